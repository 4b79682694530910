package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{
		Initial:    time.Second,
		Max:        30 * time.Second,
		Multiplier: 2,
	}

	tests := []struct {
		name       string
		retryCount int
		want       time.Duration
	}{
		{"first attempt", 0, time.Second},
		{"second attempt", 1, 2 * time.Second},
		{"third attempt", 2, 4 * time.Second},
		{"capped at max", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.CalculateBackoff(tt.retryCount))
		})
	}
}

func TestMessagePayloadRoundTrip(t *testing.T) {
	msg, err := NewMessage("msg-1", "line_item", "li-42", "bom-7", &LineItemMessage{
		LineItemID: "li-42",
		BOMID:      "bom-7",
		RawText:    `8" cmu block`,
	})
	require.NoError(t, err)

	msg.SetMetadata("request_id", "req-1")
	assert.Equal(t, "req-1", msg.GetMetadata("request_id"))
	assert.Empty(t, msg.GetMetadata("missing"))

	var payload LineItemMessage
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "li-42", payload.LineItemID)
	assert.Equal(t, `8" cmu block`, payload.RawText)
}

func TestDLQStreamNaming(t *testing.T) {
	assert.Equal(t, "dlq:bom:line_items", StreamLineItems.DLQStream())
}
