package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bom-matching-api/internal/domain/entity"
)

// FamilyRepository 物料族仓储实现
type FamilyRepository struct {
	client *Client
}

// NewFamilyRepository 创建物料族仓储
func NewFamilyRepository(client *Client) *FamilyRepository {
	return &FamilyRepository{client: client}
}

// FindFamiliesByKeywords 按关键词查询物料族。
// label 与 display_name 做大小写无关子串匹配，按 label 排序保证结果确定。
func (r *FamilyRepository) FindFamiliesByKeywords(ctx context.Context, keywords []string) ([]*entity.MaterialFamily, error) {
	ctx, span := tracer.Start(ctx, "postgres.FamilyRepository.FindFamiliesByKeywords")
	defer span.End()

	conds := make([]string, 0, len(keywords)*2)
	args := make([]interface{}, 0, len(keywords)*2)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		pattern := "%" + escapeLike(kw) + "%"
		conds = append(conds, "label ILIKE ?", "display_name ILIKE ?")
		args = append(args, pattern, pattern)
	}
	if len(conds) == 0 {
		return nil, nil
	}

	var families []*entity.MaterialFamily
	err := r.client.db.WithContext(ctx).
		Where(strings.Join(conds, " OR "), args...).
		Order("label").
		Find(&families).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find families: %w", err)
	}
	return families, nil
}

// GetByLabel 按唯一键查询物料族，未找到返回 nil
func (r *FamilyRepository) GetByLabel(ctx context.Context, label string) (*entity.MaterialFamily, error) {
	ctx, span := tracer.Start(ctx, "postgres.FamilyRepository.GetByLabel")
	defer span.End()

	var fam entity.MaterialFamily
	if err := r.client.db.WithContext(ctx).First(&fam, "label = ?", label).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return &fam, nil
}
