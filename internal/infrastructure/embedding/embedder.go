package embedding

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"

	"bom-matching-api/internal/config"
)

// NewEmbedder 按配置创建 Embedder。
// provider 为 local 时走自托管 HTTP 服务，其余走 OpenAI 兼容接口。
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "local", "http":
		return NewLocalEmbedder(cfg), nil
	default:
		return NewEinoEmbedder(ctx, cfg)
	}
}

// LocalEmbedder 将自托管 Embedding HTTP 服务适配为 Eino Embedder
type LocalEmbedder struct {
	client *Client
}

var _ embedding.Embedder = (*LocalEmbedder)(nil)

// NewLocalEmbedder 创建自托管服务适配器
func NewLocalEmbedder(cfg *config.EmbeddingConfig) *LocalEmbedder {
	return &LocalEmbedder{client: NewClient(cfg)}
}

// EmbedStrings 实现 embedding.Embedder
func (e *LocalEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	v32, err := e.client.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(v32))
	for i, vec := range v32 {
		row := make([]float64, len(vec))
		for j, x := range vec {
			row[j] = float64(x)
		}
		out[i] = row
	}
	return out, nil
}
