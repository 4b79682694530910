package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"bom-matching-api/internal/application/queryparse"
	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
	pkgErrors "bom-matching-api/pkg/errors"
)

// ProductFirst 结构化解析 -> 向量化 -> 语义检索。
// 解析是尽力而为：解析失败记告警并回退原始文本，绝不中断。
type ProductFirst struct {
	parser          queryparse.Parser
	embedder        embedding.Embedder
	vector          repository.VectorRepository
	similarityFloor float64
	maxResults      int
}

func NewProductFirst(parser queryparse.Parser, embedder embedding.Embedder, vector repository.VectorRepository, floor float64, maxResults int) *ProductFirst {
	if maxResults <= 0 {
		maxResults = 20
	}
	return &ProductFirst{
		parser:          parser,
		embedder:        embedder,
		vector:          vector,
		similarityFloor: floor,
		maxResults:      maxResults,
	}
}

func (s *ProductFirst) Execute(ctx context.Context, q entity.Query) (*Result, error) {
	result := &Result{}

	var parsed *queryparse.Result
	if s.parser != nil {
		r, err := s.parser.Parse(ctx, q.RawText)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("structured parse unavailable, falling back to raw text: %v", err))
		} else {
			parsed = r
		}
	}

	vec, err := s.embedQuery(ctx, queryparse.EmbeddingText(parsed, q.RawText))
	if err != nil {
		return nil, pkgErrors.Wrap(err, pkgErrors.CodeEmbeddingFailed, "embed query")
	}

	hits, err := s.vector.SearchByEmbedding(ctx, &repository.VectorSearchParams{
		QueryVector:     vec,
		SimilarityFloor: s.similarityFloor,
		MaxResults:      s.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	matches := make([]entity.SemanticCandidate, 0, len(hits))
	for _, h := range hits {
		if h == nil {
			continue
		}
		matches = append(matches, *h)
	}
	result.Matches = matches
	result.FamilyLabel = modalFamily(matches)
	result.ClassificationCode = firstClassificationCode(matches)
	return result, nil
}

func (s *ProductFirst) embedQuery(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty query text")
	}
	v64, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	out := make([]float32, 0, len(v64[0]))
	for _, x := range v64[0] {
		out = append(out, float32(x))
	}
	return out, nil
}

// modalFamily 候选中出现最多的非空族标签；并列取先出现者
func modalFamily(hits []entity.SemanticCandidate) string {
	counts := make(map[string]int, len(hits))
	order := make([]string, 0, len(hits))
	for _, h := range hits {
		label := h.FamilyLabel
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}
	best := ""
	bestCount := 0
	for _, label := range order {
		if counts[label] > bestCount {
			best = label
			bestCount = counts[label]
		}
	}
	return best
}

// firstClassificationCode 按相似度序取首个非空分类码
func firstClassificationCode(hits []entity.SemanticCandidate) string {
	for _, h := range hits {
		if h.ClassificationCode != "" {
			return h.ClassificationCode
		}
	}
	return ""
}
