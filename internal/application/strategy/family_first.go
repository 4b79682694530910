package strategy

import (
	"context"
	"fmt"

	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
)

// FamilyFirst 先解析物料族，再按族（及尺寸变体子串）过滤候选。
// 未解析出族时返回零匹配加告警，不视为错误。
// 候选无相似度分，命中本身即信号。
type FamilyFirst struct {
	resolver   *FamilyResolver
	candidates repository.CandidateRepository
	maxResults int
}

func NewFamilyFirst(resolver *FamilyResolver, candidates repository.CandidateRepository, maxResults int) *FamilyFirst {
	if maxResults <= 0 {
		maxResults = 20
	}
	return &FamilyFirst{resolver: resolver, candidates: candidates, maxResults: maxResults}
}

func (s *FamilyFirst) Execute(ctx context.Context, q entity.Query) (*Result, error) {
	fam, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("resolve family: %w", err)
	}
	if fam == nil {
		return &Result{
			Warnings: []string{"no material family matched the query keywords"},
		}, nil
	}

	filter := repository.CandidateFilter{
		FamilyLabel:        fam.Label,
		ClassificationCode: fam.ClassificationCode,
		SizePatterns:       q.SizeVariants,
		Limit:              s.maxResults,
	}
	cands, err := s.candidates.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	matches := make([]entity.SemanticCandidate, 0, len(cands))
	for _, c := range cands {
		if c == nil {
			continue
		}
		matches = append(matches, entity.SemanticCandidate{CandidateProduct: *c})
	}
	return &Result{
		Matches:            matches,
		FamilyLabel:        fam.Label,
		ClassificationCode: fam.ClassificationCode,
	}, nil
}
