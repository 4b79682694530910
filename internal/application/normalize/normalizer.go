package normalize

import (
	"strings"

	"bom-matching-api/internal/domain/entity"
)

// Normalizer 输入归一化器：组合单位换算与术语扩展，产出结构化查询对象
type Normalizer struct {
	expander *Expander
}

// NewNormalizer 创建输入归一化器
func NewNormalizer() *Normalizer {
	return &Normalizer{
		expander: NewExpander(),
	}
}

// Normalize 将一行物料描述归一化为查询对象
func (n *Normalizer) Normalize(rawText string) entity.Query {
	keywords := tokenize(rawText)
	sizeVariants := SizeVariants(rawText)

	expanded := n.expander.Expand(keywords)
	// 扩展结果中输入在前、新增在后，截取新增部分作为同义词集合
	synonyms := expanded[len(keywords):]

	return entity.NewQuery(rawText, keywords, sizeVariants, synonyms)
}

// tokenize 切分关键词：小写、去重、剔除纯标点。
// 保留数字内的 . 和 /，使 "1/2" 与 "0.5" 作为整体保留。
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', ';', '(', ')', '[', ']', '"':
			return true
		}
		return false
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".-")
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
