// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"strings"

	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
)

// CandidateRepository 候选产品仓储实现
type CandidateRepository struct {
	client *Client
}

// NewCandidateRepository 创建候选产品仓储
func NewCandidateRepository(client *Client) *CandidateRepository {
	return &CandidateRepository{client: client}
}

// FindCandidates 按条件查询候选产品。
// 尺寸变体与关键词均为展示名大小写无关子串匹配，组内任一命中即可。
func (r *CandidateRepository) FindCandidates(ctx context.Context, filter repository.CandidateFilter) ([]*entity.CandidateProduct, error) {
	ctx, span := tracer.Start(ctx, "postgres.CandidateRepository.FindCandidates")
	defer span.End()

	db := r.client.db.WithContext(ctx).Model(&entity.CandidateProduct{})
	if filter.FamilyLabel != "" {
		db = db.Where("family_label = ?", filter.FamilyLabel)
	}
	if filter.ClassificationCode != "" {
		db = db.Where("classification_code = ?", filter.ClassificationCode)
	}
	if cond, args := anyLike(filter.SizePatterns); cond != "" {
		db = db.Where(cond, args...)
	}
	if cond, args := anyLike(filter.Keywords); cond != "" {
		db = db.Where(cond, args...)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var products []*entity.CandidateProduct
	if err := db.Order("id").Find(&products).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	return products, nil
}

// GetByIDs 按 ID 集合查询候选产品
func (r *CandidateRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.CandidateProduct, error) {
	ctx, span := tracer.Start(ctx, "postgres.CandidateRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}
	var products []*entity.CandidateProduct
	if err := r.client.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get candidates: %w", err)
	}
	return products, nil
}

// anyLike 构造 "任一模式命中展示名" 的 OR 条件
func anyLike(patterns []string) (string, []interface{}) {
	if len(patterns) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(patterns))
	args := make([]interface{}, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		conds = append(conds, "display_name ILIKE ?")
		args = append(args, "%"+escapeLike(p)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

// escapeLike 转义 LIKE 模式中的通配符
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
