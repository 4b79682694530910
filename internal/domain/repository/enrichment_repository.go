package repository

import (
	"context"

	"bom-matching-api/internal/domain/entity"
)

// EnrichmentRepository 供应商富化数据访问接口。
// 来源集合在运行期发现：新增供应商数据集不需要代码改动。
type EnrichmentRepository interface {
	// DiscoverSources 探测所有暴露预期富化结构的供应商来源
	DiscoverSources(ctx context.Context) ([]*entity.VendorSource, error)
	// FetchEnrichment 查询单个来源下给定候选的富化记录。
	// 来源中没有匹配候选时返回空切片而不是错误。
	FetchEnrichment(ctx context.Context, source *entity.VendorSource, candidateIDs []string) ([]*entity.EnrichmentRecord, error)
}
