// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainEntity "bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
)

// Repository 产品向量仓储，实现 repository.VectorRepository
type Repository struct {
	client *Client
}

var _ repository.VectorRepository = (*Repository)(nil)

// NewRepository 创建产品向量仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	schema.CollectionName = r.client.CollectionName(schema.CollectionName)
	if err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := r.client.milvus.CreateIndex(ctx, r.client.CollectionName(collection), "vector", idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// EnsureProductsCollection 确保产品集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureProductsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionProducts)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, ProductsSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionProducts)
	}
	return r.client.LoadCollection(ctx, CollectionProducts)
}

// SearchByEmbedding 按向量检索候选产品，按相似度降序返回。
// 低于相似度下限的结果被丢弃。
func (r *Repository) SearchByEmbedding(ctx context.Context, params *repository.VectorSearchParams) ([]*domainEntity.SemanticCandidate, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchByEmbedding",
		trace.WithAttributes(
			attribute.Int("max_results", params.MaxResults),
			attribute.Float64("similarity_floor", params.SimilarityFloor),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionProducts)

	filter := ""
	if f := strings.TrimSpace(params.FamilyFilter); f != "" {
		filter = fmt.Sprintf(`family_label == "%s"`, f)
	}

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "vendor", "display_name", "classification_code", "family_label"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.MaxResults,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var candidates []*domainEntity.SemanticCandidate
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			similarity := similarityFromScore(result.Scores[i])
			if similarity < params.SimilarityFloor {
				continue
			}

			c := &domainEntity.SemanticCandidate{Similarity: similarity}
			if col, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				c.ID = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("vendor").(*entity.ColumnVarChar); ok {
				c.Vendor = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("display_name").(*entity.ColumnVarChar); ok {
				c.DisplayName = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("classification_code").(*entity.ColumnVarChar); ok {
				c.ClassificationCode = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("family_label").(*entity.ColumnVarChar); ok {
				c.FamilyLabel = col.Data()[i]
			}
			candidates = append(candidates, c)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(candidates)))
	return candidates, nil
}

// similarityFromScore 将 COSINE 命中分数规整到 [0,1]
// Milvus 对 COSINE 度量直接返回余弦相似度（越大越相似，取值 [-1,1]）
func similarityFromScore(score float32) float64 {
	s := float64(score)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// InsertProducts 写入产品向量（目录同步时使用）
func (r *Repository) InsertProducts(ctx context.Context, products []*repository.ProductVector) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertProducts",
		trace.WithAttributes(attribute.Int("count", len(products))))
	defer span.End()

	if len(products) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionProducts)

	ids := make([]string, len(products))
	vectors := make([][]float32, len(products))
	vendors := make([]string, len(products))
	names := make([]string, len(products))
	codes := make([]string, len(products))
	families := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
		vectors[i] = p.Vector
		vendors[i] = p.Vendor
		names[i] = p.DisplayName
		codes[i] = p.ClassificationCode
		families[i] = p.FamilyLabel
	}

	_, err := r.client.milvus.Insert(ctx, collName, "",
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnFloatVector("vector", VectorDimension, vectors),
		entity.NewColumnVarChar("vendor", vendors),
		entity.NewColumnVarChar("display_name", names),
		entity.NewColumnVarChar("classification_code", codes),
		entity.NewColumnVarChar("family_label", families),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert products: %w", err)
	}
	return nil
}
