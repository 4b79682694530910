package milvus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityFromScore(t *testing.T) {
	tests := []struct {
		name  string
		score float32
		want  float64
	}{
		{"typical hit", 0.92, 0.92},
		{"weak hit", 0.2, 0.2},
		{"opposite direction clamped to zero", -0.4, 0},
		{"float drift clamped to one", 1.0001, 1},
		{"exact zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarityFromScore(tt.score), 1e-6)
		})
	}
}

func TestSimilarityFloorKeepsBestHits(t *testing.T) {
	floor := 0.35

	// 余弦相似度越高代表越相似，门槛应淘汰低分而保留高分
	assert.GreaterOrEqual(t, similarityFromScore(0.92), floor)
	assert.Less(t, similarityFromScore(0.2), floor)
}
