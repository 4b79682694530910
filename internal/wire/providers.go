// Package wire 提供依赖注入配置
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"bom-matching-api/internal/application/enrichment"
	"bom-matching-api/internal/application/fusion"
	"bom-matching-api/internal/application/normalize"
	"bom-matching-api/internal/application/queryparse"
	"bom-matching-api/internal/application/search"
	"bom-matching-api/internal/application/strategy"
	"bom-matching-api/internal/config"
	"bom-matching-api/internal/domain/repository"
	infraembedding "bom-matching-api/internal/infrastructure/embedding"
	"bom-matching-api/internal/infrastructure/llm"
	"bom-matching-api/internal/infrastructure/messaging"
	"bom-matching-api/internal/infrastructure/persistence/milvus"
	"bom-matching-api/internal/infrastructure/persistence/postgres"
	"bom-matching-api/internal/infrastructure/persistence/redis"
)

// WorkerLayer 行项 worker 依赖容器
type WorkerLayer struct {
	Orchestrator *search.Orchestrator
	Producer     *messaging.Producer
	RedisClient  *redis.Client
}

// BootstrapLayer bootstrap 命令依赖容器
type BootstrapLayer struct {
	PgClient     *postgres.Client
	RedisClient  *redis.Client
	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository
	Registry     *enrichment.SourceRegistry
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusClient 提供 Milvus 客户端
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideEnrichmentRepository 提供富化仓储，表前缀来自配置
func ProvideEnrichmentRepository(client *postgres.Client, cfg *config.Config) *postgres.EnrichmentRepository {
	return postgres.NewEnrichmentRepository(client, cfg.Enrichment.SourceTablePrefix)
}

// ProvideEmbedder 根据配置选择 Eino 或本地 HTTP Embedder
func ProvideEmbedder(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	return infraembedding.NewEmbedder(ctx, &cfg.Embedding)
}

// ProvideParser 提供结构化查询解析器；未配置任何 provider 时返回 nil，
// product-first 策略会回退到原始文本
func ProvideParser(ctx context.Context, cfg *config.Config, factory *llm.EinoFactory) (queryparse.Parser, error) {
	if len(cfg.Parser.Providers) == 0 {
		return nil, nil
	}
	chatModel, err := factory.Get(ctx, cfg.Parser.DefaultProvider)
	if err != nil {
		return nil, err
	}
	return queryparse.NewLLMParser(chatModel, cfg.Parser.MinConfidence), nil
}

// ProvideFamilyResolver 提供带 Redis 缓存的物料族解析器
func ProvideFamilyResolver(families repository.FamilyRepository, cache *redis.Cache, cfg *config.Config) *strategy.FamilyResolver {
	return strategy.NewFamilyResolver(families, cache, cfg.Search.FamilyCacheTTL)
}

// ProvideStrategies 组装模式到策略实现的映射
func ProvideStrategies(
	cfg *config.Config,
	resolver *strategy.FamilyResolver,
	candidates repository.CandidateRepository,
	parser queryparse.Parser,
	embedder einoembedding.Embedder,
	vector repository.VectorRepository,
) map[strategy.Mode]strategy.Strategy {
	familyFirst := strategy.NewFamilyFirst(resolver, candidates, cfg.Search.MaxResults)
	productFirst := strategy.NewProductFirst(parser, embedder, vector, cfg.Search.SimilarityFloor, cfg.Search.MaxResults)
	hybrid := strategy.NewHybrid(familyFirst, productFirst, fusion.NewFuser(cfg.Search.RRFK))

	return map[strategy.Mode]strategy.Strategy{
		strategy.ModeFamilyFirst:  familyFirst,
		strategy.ModeProductFirst: productFirst,
		strategy.ModeHybrid:       hybrid,
	}
}

// ProvideDefaultMode 校验并提供配置的默认检索模式
func ProvideDefaultMode(cfg *config.Config) (strategy.Mode, error) {
	return strategy.ParseMode(cfg.Search.Mode)
}

// ProvideFanout 提供受限并发的富化扇出
func ProvideFanout(repo repository.EnrichmentRepository, registry *enrichment.SourceRegistry, cfg *config.Config) *enrichment.Fanout {
	return enrichment.NewFanout(repo, registry, cfg.Enrichment.MaxInFlight)
}

// ProvideOrchestrator 组装检索编排器
func ProvideOrchestrator(
	strategies map[strategy.Mode]strategy.Strategy,
	defaultMode strategy.Mode,
	fanout *enrichment.Fanout,
) *search.Orchestrator {
	return search.NewOrchestrator(normalize.NewNormalizer(), strategies, defaultMode, fanout)
}

// ProvideProducer 提供消息生产者
func ProvideProducer(client *redis.Client, cfg *config.Config) *messaging.Producer {
	return messaging.NewProducer(client.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}
