//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"bom-matching-api/internal/application/enrichment"
	"bom-matching-api/internal/config"
	"bom-matching-api/internal/domain/repository"
	"bom-matching-api/internal/infrastructure/llm"
	"bom-matching-api/internal/infrastructure/messaging"
	"bom-matching-api/internal/infrastructure/persistence/milvus"
	"bom-matching-api/internal/infrastructure/persistence/postgres"
	"bom-matching-api/internal/infrastructure/persistence/redis"
	"bom-matching-api/internal/interfaces/http/handler"
	"bom-matching-api/internal/interfaces/http/router"
)

// InitializeApp 初始化 HTTP 服务（matcher-svc）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		MilvusSet,
		SearchSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化行项 worker 依赖
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerLayer, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		MilvusSet,
		SearchSet,
		ProvideProducer,
		wire.Struct(new(WorkerLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化 bootstrap 命令依赖
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*BootstrapLayer, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		MilvusSet,
		enrichment.NewSourceRegistry,
		wire.Struct(new(BootstrapLayer), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewCandidateRepository,
	postgres.NewFamilyRepository,
	ProvideEnrichmentRepository,
	wire.Bind(new(repository.CandidateRepository), new(*postgres.CandidateRepository)),
	wire.Bind(new(repository.FamilyRepository), new(*postgres.FamilyRepository)),
	wire.Bind(new(repository.EnrichmentRepository), new(*postgres.EnrichmentRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
)

// MilvusSet Milvus 提供者集合
var MilvusSet = wire.NewSet(
	ProvideMilvusClient,
	milvus.NewRepository,
	wire.Bind(new(repository.VectorRepository), new(*milvus.Repository)),
)

// SearchSet 检索流水线提供者集合
var SearchSet = wire.NewSet(
	llm.NewEinoFactory,
	ProvideEmbedder,
	ProvideParser,
	ProvideFamilyResolver,
	ProvideStrategies,
	ProvideDefaultMode,
	enrichment.NewSourceRegistry,
	ProvideFanout,
	ProvideOrchestrator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideProducer,
	handler.NewHealthHandler,
	handler.NewSearchHandler,
	handler.NewEnrichmentHandler,
	wire.Bind(new(handler.LineItemPublisher), new(*messaging.Producer)),
	wire.Bind(new(handler.FamilyCacheInvalidator), new(*redis.Cache)),
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
