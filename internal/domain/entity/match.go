package entity

import "time"

// Query 归一化后的查询对象。构造后不可变。
type Query struct {
	// RawText 原始输入文本
	RawText string `json:"raw_text"`
	// Keywords 派生关键词集合（去重，无序）
	Keywords []string `json:"keywords"`
	// SizeVariants 同一公称尺寸在两套单位制下的全部文本形式（有序）
	SizeVariants []string `json:"size_variants,omitempty"`
	// Synonyms 同义词扩展集合
	Synonyms []string `json:"synonyms,omitempty"`
}

// NewQuery 创建查询对象，复制切片以保证不可变性
func NewQuery(rawText string, keywords, sizeVariants, synonyms []string) Query {
	return Query{
		RawText:      rawText,
		Keywords:     append([]string(nil), keywords...),
		SizeVariants: append([]string(nil), sizeVariants...),
		Synonyms:     append([]string(nil), synonyms...),
	}
}

// RankedMatch 融合/排序单元：候选 + 1-based 排名 + 融合分
type RankedMatch struct {
	Candidate   SemanticCandidate `json:"candidate"`
	Rank        int               `json:"rank"`
	FusionScore float64           `json:"fusion_score"`
}

// FinalMatch 对外可见的匹配单元：候选产品 + 至多一条富化记录 + 可选评分
type FinalMatch struct {
	CandidateProduct
	Similarity  *float64          `json:"similarity,omitempty"`
	FusionScore *float64          `json:"fusion_score,omitempty"`
	Enrichment  *EnrichmentRecord `json:"enrichment,omitempty"`
}

// SearchOutcome 单次检索的最终结果。构造一次，之后不可变。
// 零匹配的成功结果是合法的，与失败（返回 error）严格区分。
type SearchOutcome struct {
	Query              Query         `json:"query"`
	FamilyLabel        string        `json:"family_label,omitempty"`
	ClassificationCode string        `json:"classification_code,omitempty"`
	Matches            []FinalMatch  `json:"matches"`
	Elapsed            time.Duration `json:"elapsed"`
	Warnings           []string      `json:"warnings,omitempty"`
}
