package strategy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bom-matching-api/internal/application/fusion"
	"bom-matching-api/internal/domain/entity"
	pkgErrors "bom-matching-api/pkg/errors"
)

// Hybrid 并发执行词法分支（family_first）与语义分支（product_first），
// 用倒数排名融合合并两路结果。单分支失败降级并告警，双分支失败才算失败。
type Hybrid struct {
	lexical  Strategy
	semantic Strategy
	fuser    *fusion.Fuser
}

func NewHybrid(lexical, semantic Strategy, fuser *fusion.Fuser) *Hybrid {
	if fuser == nil {
		fuser = fusion.NewFuser(fusion.DefaultK)
	}
	return &Hybrid{lexical: lexical, semantic: semantic, fuser: fuser}
}

func (s *Hybrid) Execute(ctx context.Context, q entity.Query) (*Result, error) {
	var (
		lexRes, semRes *Result
		lexErr, semErr error
	)

	// 分支错误各自捕获，互不取消
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexRes, lexErr = s.lexical.Execute(gctx, q)
		return nil
	})
	g.Go(func() error {
		semRes, semErr = s.semantic.Execute(gctx, q)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lexErr != nil && semErr != nil {
		return nil, pkgErrors.New(pkgErrors.CodeAllBranchesFailed, "all search branches failed").
			WithDetail(fmt.Sprintf("lexical: %v; semantic: %v", lexErr, semErr))
	}

	result := &Result{}
	var lexMatches, semMatches []entity.SemanticCandidate

	switch {
	case lexErr != nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("lexical branch failed, results degraded to semantic only: %v", lexErr))
	case lexRes != nil:
		lexMatches = lexRes.Matches
		result.Warnings = append(result.Warnings, lexRes.Warnings...)
	}
	switch {
	case semErr != nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("semantic branch failed, results degraded to lexical only: %v", semErr))
	case semRes != nil:
		semMatches = semRes.Matches
		result.Warnings = append(result.Warnings, semRes.Warnings...)
	}

	if lexErr == nil && len(lexMatches) == 0 && len(semMatches) > 0 {
		result.Warnings = append(result.Warnings, "lexical branch found no candidates")
	}

	result.Fused = s.fuser.Fuse(lexMatches, semMatches)
	result.Matches = make([]entity.SemanticCandidate, 0, len(result.Fused))
	for _, rm := range result.Fused {
		result.Matches = append(result.Matches, rm.Candidate)
	}

	// 族标签与分类码优先取词法分支的解析结果
	if lexRes != nil && lexRes.FamilyLabel != "" {
		result.FamilyLabel = lexRes.FamilyLabel
		result.ClassificationCode = lexRes.ClassificationCode
	} else if semRes != nil {
		result.FamilyLabel = semRes.FamilyLabel
		result.ClassificationCode = semRes.ClassificationCode
	}
	return result, nil
}
