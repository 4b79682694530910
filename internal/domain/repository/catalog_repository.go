// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"bom-matching-api/internal/domain/entity"
)

// CandidateFilter 候选产品查询条件。零值字段不参与过滤。
type CandidateFilter struct {
	FamilyLabel        string
	ClassificationCode string
	// SizePatterns 任一命中即可（展示名子串匹配）
	SizePatterns []string
	// Keywords 任一命中即可（展示名子串匹配）
	Keywords []string
	Limit    int
}

// CandidateRepository 候选产品存储接口
type CandidateRepository interface {
	// FindCandidates 按条件查询候选产品
	FindCandidates(ctx context.Context, filter CandidateFilter) ([]*entity.CandidateProduct, error)
	// GetByIDs 按 ID 集合查询候选产品
	GetByIDs(ctx context.Context, ids []string) ([]*entity.CandidateProduct, error)
}

// FamilyRepository 物料族存储接口
type FamilyRepository interface {
	// FindFamiliesByKeywords 按关键词查询物料族（label/display_name 大小写无关子串匹配）
	FindFamiliesByKeywords(ctx context.Context, keywords []string) ([]*entity.MaterialFamily, error)
	// GetByLabel 按唯一键查询物料族，未找到返回 nil
	GetByLabel(ctx context.Context, label string) (*entity.MaterialFamily, error)
}
