package queryparse

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply string
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func TestLLMParserParse(t *testing.T) {
	t.Run("structured reply above confidence floor", func(t *testing.T) {
		m := &fakeChatModel{reply: `{"family": "pvc_pipe", "attributes": {"size": "1/2\"", "standard": "sch40"}, "confidence": 0.9}`}
		p := NewLLMParser(m, 0.5)

		out, err := p.Parse(context.Background(), `pvc pipe 1/2" sch40`)
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, "pvc_pipe", out.Family)
		assert.Equal(t, `1/2"`, out.Attributes["size"])
		assert.Empty(t, out.Error)
	})

	t.Run("provider failure surfaces as error", func(t *testing.T) {
		m := &fakeChatModel{err: errors.New("upstream timeout")}
		p := NewLLMParser(m, 0.5)

		out, err := p.Parse(context.Background(), "anchor bolt")
		require.Error(t, err)
		assert.Nil(t, out)
		assert.Contains(t, err.Error(), "parse provider call failed")
	})

	t.Run("confidence below floor degrades without error", func(t *testing.T) {
		m := &fakeChatModel{reply: `{"family": "fastener", "attributes": {"grade": "8.8"}, "confidence": 0.3}`}
		p := NewLLMParser(m, 0.5)

		out, err := p.Parse(context.Background(), "misc hardware")
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "below floor")
		// 低置信度仍保留已解析属性，便于调用方记录
		assert.Equal(t, "fastener", out.Family)
	})

	t.Run("unparseable reply degrades without error", func(t *testing.T) {
		m := &fakeChatModel{reply: "sorry, I cannot help with that"}
		p := NewLLMParser(m, 0.5)

		out, err := p.Parse(context.Background(), "mystery part")
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "unparseable model output")
	})

	t.Run("fenced reply is accepted", func(t *testing.T) {
		m := &fakeChatModel{reply: "```json\n{\"family\": \"rebar\", \"confidence\": 0.8}\n```"}
		p := NewLLMParser(m, 0.5)

		out, err := p.Parse(context.Background(), "#4 rebar 20ft")
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, "rebar", out.Family)
	})

	t.Run("nil model is reported", func(t *testing.T) {
		p := NewLLMParser(nil, 0.5)

		_, err := p.Parse(context.Background(), "anything")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse model not configured")
	})
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", `Here you go: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`},
		{"array", `[1,2,3]`, `[1,2,3]`},
		{"no json at all", "nothing here", "nothing here"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}

func TestEmbeddingText(t *testing.T) {
	t.Run("nil or failed result falls back to raw text", func(t *testing.T) {
		assert.Equal(t, "8 inch cmu", EmbeddingText(nil, " 8 inch cmu "))
		assert.Equal(t, "raw", EmbeddingText(&Result{Success: false}, "raw"))
	})

	t.Run("attributes sorted by key for determinism", func(t *testing.T) {
		r := &Result{
			Success: true,
			Family:  "masonry_block",
			Attributes: map[string]string{
				"size":     `8"`,
				"material": "concrete",
				"grade":    "N",
			},
		}
		want := `masonry_block; grade: N; material: concrete; size: 8"`
		assert.Equal(t, want, EmbeddingText(r, "ignored"))
	})

	t.Run("empty successful result falls back", func(t *testing.T) {
		assert.Equal(t, "raw", EmbeddingText(&Result{Success: true}, "raw"))
	})
}
