// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bom-matching-api/internal/domain/entity"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishLineItem 发布待匹配的 BOM 行项
func (p *Producer) PublishLineItem(ctx context.Context, item *LineItemMessage) (string, error) {
	msg, err := NewMessage(item.LineItemID, "line_item", item.LineItemID, item.BOMID, item)
	if err != nil {
		return "", err
	}

	if item.Mode != "" {
		msg.SetMetadata("mode", item.Mode)
	}
	return p.Publish(ctx, StreamLineItems, msg)
}

// PublishMatchResult 发布匹配结果
func (p *Producer) PublishMatchResult(ctx context.Context, result *MatchResultMessage) (string, error) {
	msg, err := NewMessage(result.LineItemID, "match_result", result.LineItemID, result.BOMID, result)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamMatchResults, msg)
}

// LineItemMessage 待匹配的 BOM 行项消息
type LineItemMessage struct {
	LineItemID string `json:"line_item_id"`
	BOMID      string `json:"bom_id,omitempty"`
	RawText    string `json:"raw_text"`
	// Mode 可选的检索模式覆盖，空值取服务配置
	Mode        string `json:"mode,omitempty"`
	RequestedAt int64  `json:"requested_at,omitempty"`
}

// MatchResultMessage 行项匹配结果消息
type MatchResultMessage struct {
	LineItemID string                `json:"line_item_id"`
	BOMID      string                `json:"bom_id,omitempty"`
	Outcome    *entity.SearchOutcome `json:"outcome,omitempty"`
	// Error 致命错误描述；成功时为空
	Error string `json:"error,omitempty"`
}
