package repository

import (
	"context"

	"bom-matching-api/internal/domain/entity"
)

// VectorSearchParams 语义候选检索参数
type VectorSearchParams struct {
	QueryVector []float32
	// SimilarityFloor 相似度下限 [0,1]，低于该值的结果被丢弃
	SimilarityFloor float64
	MaxResults      int
	// FamilyFilter 可选的族过滤
	FamilyFilter string
}

// VectorRepository 语义候选存储接口（由 Milvus 实现）
type VectorRepository interface {
	// EnsureProductsCollection 确保产品向量集合与索引存在
	EnsureProductsCollection(ctx context.Context) error
	// SearchByEmbedding 按向量检索候选产品，按相似度降序返回
	SearchByEmbedding(ctx context.Context, params *VectorSearchParams) ([]*entity.SemanticCandidate, error)
	// InsertProducts 写入产品向量（目录同步时使用）
	InsertProducts(ctx context.Context, products []*ProductVector) error
}

// ProductVector 待写入的产品向量
type ProductVector struct {
	ID                 string
	Vendor             string
	DisplayName        string
	ClassificationCode string
	FamilyLabel        string
	Vector             []float32
}
