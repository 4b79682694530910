package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"bom-matching-api/internal/config"
	"bom-matching-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层
	layer, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 连通性检查
	if err := layer.PgClient.Ping(ctx); err != nil {
		log.Fatalf("postgres unreachable: %v", err)
	}
	fmt.Println("PostgreSQL connection OK.")

	if err := layer.RedisClient.Ping(ctx); err != nil {
		log.Fatalf("redis unreachable: %v", err)
	}
	fmt.Println("Redis connection OK.")

	// 4. 确保 Milvus 产品集合和索引存在
	if err := layer.VectorRepo.EnsureProductsCollection(ctx); err != nil {
		log.Fatalf("failed to ensure milvus products collection: %v", err)
	}
	fmt.Println("Milvus products collection ready.")

	// 5. 探测供应商富化来源
	sources, err := layer.Registry.Refresh(ctx)
	if err != nil {
		log.Fatalf("failed to discover enrichment sources: %v", err)
	}
	fmt.Printf("Discovered %d enrichment source(s):\n", len(sources))
	for _, src := range sources {
		fmt.Printf("  - %s (table %s)\n", src.ID, src.Table)
	}

	fmt.Println("Bootstrap completed successfully.")
}
