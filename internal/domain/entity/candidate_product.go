package entity

// CandidateProduct 候选产品，目录中的一条记录。
// ID 全局唯一且不复用。
type CandidateProduct struct {
	ID                 string `json:"id"`
	Vendor             string `json:"vendor"`
	DisplayName        string `json:"display_name"`
	ClassificationCode string `json:"classification_code,omitempty"`
	FamilyLabel        string `json:"family_label,omitempty"`
}

// TableName GORM 表名
func (CandidateProduct) TableName() string {
	return "candidate_products"
}

// SemanticCandidate 语义检索产生的候选：候选产品 + 相似度评分。
// Similarity 恒在 [0,1] 区间。
type SemanticCandidate struct {
	CandidateProduct
	Similarity float64 `json:"similarity"`
}
