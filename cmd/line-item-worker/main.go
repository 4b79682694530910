// Package main BOM 行项匹配 worker 入口
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bom-matching-api/internal/config"
	"bom-matching-api/internal/infrastructure/messaging"
	einoobs "bom-matching-api/internal/observability/eino"
	"bom-matching-api/internal/wire"
	"bom-matching-api/pkg/logger"
	"bom-matching-api/pkg/metrics"
	"bom-matching-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "line-item-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	einoobs.Init()

	layer, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	consumer := messaging.NewConsumer(layer.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamLineItems,
		Group:         messaging.ConsumerGroupLineItemWorker,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler("line_item", func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.LineItemMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			metrics.LineItemsConsumed.WithLabelValues("invalid").Inc()
			return err
		}

		outcome, err := layer.Orchestrator.Search(msgCtx, payload.RawText, payload.Mode)
		if err != nil {
			metrics.LineItemsConsumed.WithLabelValues("failed").Inc()
			// 致命错误也要向下游通报，便于 BOM 汇总侧标记行项
			if _, pubErr := layer.Producer.PublishMatchResult(msgCtx, &messaging.MatchResultMessage{
				LineItemID: payload.LineItemID,
				BOMID:      payload.BOMID,
				Error:      err.Error(),
			}); pubErr != nil {
				logger.Error(msgCtx, "failed to publish match failure", pubErr)
			}
			return err
		}

		if _, err := layer.Producer.PublishMatchResult(msgCtx, &messaging.MatchResultMessage{
			LineItemID: payload.LineItemID,
			BOMID:      payload.BOMID,
			Outcome:    outcome,
		}); err != nil {
			metrics.LineItemsConsumed.WithLabelValues("publish_failed").Inc()
			return err
		}

		metrics.LineItemsConsumed.WithLabelValues("matched").Inc()
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	log := logger.FromContext(ctx)
	log.Info("line-item-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("line-item-worker shutting down")
	consumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
