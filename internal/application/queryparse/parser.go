// Package queryparse 提供结构化查询解析：把自由文本物料描述解析为结构化属性
package queryparse

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"

	"bom-matching-api/pkg/metrics"
)

var tracer = otel.Tracer("queryparse")

// Result 解析结果。Success=false 时调用方应回退为原始文本，绝不中断检索。
type Result struct {
	Family     string            `json:"family,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Confidence float64           `json:"confidence"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
}

// Parser 结构化查询解析能力（外部协作方）
type Parser interface {
	Parse(ctx context.Context, text string) (*Result, error)
}

const systemPrompt = `You are a construction material catalog assistant.
Given one bill-of-materials line, extract structured attributes.
Respond with a single JSON object and nothing else:
{"family": "<material family or empty>", "attributes": {"<key>": "<value>"}, "confidence": <0..1>}
Attribute keys: size, grade, material, coating, standard, shape. Omit unknown keys.`

// LLMParser 基于 Chat Model 的解析器实现
type LLMParser struct {
	model         model.BaseChatModel
	minConfidence float64
}

// NewLLMParser 创建解析器；confidence 低于 minConfidence 的结果视为失败
func NewLLMParser(m model.BaseChatModel, minConfidence float64) *LLMParser {
	return &LLMParser{
		model:         m,
		minConfidence: minConfidence,
	}
}

// Parse 调用模型解析物料描述。
// 提供方故障返回可恢复错误；置信度不足返回 Success=false 而不是错误。
func (p *LLMParser) Parse(ctx context.Context, text string) (*Result, error) {
	if p == nil || p.model == nil {
		return nil, fmt.Errorf("parse model not configured")
	}
	ctx, span := tracer.Start(ctx, "queryparse.Parse")
	defer span.End()

	msg, err := p.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(strings.TrimSpace(text)),
	})
	if err != nil {
		span.RecordError(err)
		metrics.ProviderCalls.WithLabelValues("parser", "error").Inc()
		return nil, fmt.Errorf("parse provider call failed: %w", err)
	}
	metrics.ProviderCalls.WithLabelValues("parser", "ok").Inc()

	raw := ExtractJSONObject(msg.Content)

	var out Result
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// 模型输出不可解析：降级而非报错
		return &Result{Success: false, Error: fmt.Sprintf("unparseable model output: %v", err)}, nil
	}

	if out.Confidence < p.minConfidence {
		out.Success = false
		if out.Error == "" {
			out.Error = fmt.Sprintf("confidence %.2f below floor %.2f", out.Confidence, p.minConfidence)
		}
		return &out, nil
	}

	out.Success = true
	return &out, nil
}

// EmbeddingText 从解析结果构建归一化的向量化输入串。
// 属性按键名排序，保证相同解析结果产生相同的向量化输入。
func EmbeddingText(r *Result, fallback string) string {
	if r == nil || !r.Success {
		return strings.TrimSpace(fallback)
	}

	parts := make([]string, 0, len(r.Attributes)+1)
	if r.Family != "" {
		parts = append(parts, r.Family)
	}

	keys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(r.Attributes[k]); v != "" {
			parts = append(parts, k+": "+v)
		}
	}

	if len(parts) == 0 {
		return strings.TrimSpace(fallback)
	}
	return strings.Join(parts, "; ")
}
