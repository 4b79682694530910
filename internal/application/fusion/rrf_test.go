package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bom-matching-api/internal/domain/entity"
)

func candidate(id string) entity.SemanticCandidate {
	return entity.SemanticCandidate{
		CandidateProduct: entity.CandidateProduct{ID: id, DisplayName: id},
	}
}

func list(ids ...string) []entity.SemanticCandidate {
	out := make([]entity.SemanticCandidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, candidate(id))
	}
	return out
}

func rankOf(t *testing.T, matches []entity.RankedMatch, id string) int {
	t.Helper()
	for _, m := range matches {
		if m.Candidate.ID == id {
			return m.Rank
		}
	}
	t.Fatalf("candidate %s not in fused result", id)
	return 0
}

func TestFuse(t *testing.T) {
	t.Run("single list keeps order", func(t *testing.T) {
		f := NewFuser(60)
		got := f.Fuse(list("a", "b", "c"))
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].Candidate.ID)
		assert.Equal(t, "b", got[1].Candidate.ID)
		assert.Equal(t, "c", got[2].Candidate.ID)
		for i, m := range got {
			assert.Equal(t, i+1, m.Rank)
		}
	})

	t.Run("presence in two lists beats single presence", func(t *testing.T) {
		// 对任意 k>0：B 和 A 双列表在场，D 只在一个列表且排名 3，
		// D 永远不会超过 A 或 B
		for _, k := range []int{1, 10, 60, 1000} {
			f := NewFuser(k)
			got := f.Fuse(list("A", "B", "C"), list("B", "A", "D"))

			assert.Less(t, rankOf(t, got, "A"), rankOf(t, got, "D"), "k=%d", k)
			assert.Less(t, rankOf(t, got, "B"), rankOf(t, got, "D"), "k=%d", k)
		}
	})

	t.Run("rank sum monotonicity", func(t *testing.T) {
		// list1=[A,B,C] list2=[B,A,D]：A 与 B 的名次和相等（1+2 与 2+1），
		// 得分关系由名次和决定，融合分必须相等
		f := NewFuser(60)
		got := f.Fuse(list("A", "B", "C"), list("B", "A", "D"))

		var scoreA, scoreB float64
		for _, m := range got {
			switch m.Candidate.ID {
			case "A":
				scoreA = m.FusionScore
			case "B":
				scoreB = m.FusionScore
			}
		}
		assert.InDelta(t, scoreA, scoreB, 1e-12)
	})

	t.Run("ties broken by first seen across input lists", func(t *testing.T) {
		f := NewFuser(60)
		got := f.Fuse(list("A", "B", "C"), list("B", "A", "D"))

		// A 在第一个列表先出现，平分时排在 B 前
		assert.Less(t, rankOf(t, got, "A"), rankOf(t, got, "B"))
	})

	t.Run("deterministic across invocations", func(t *testing.T) {
		f := NewFuser(60)
		first := f.Fuse(list("x", "y", "z"), list("z", "w", "x"))
		for i := 0; i < 20; i++ {
			again := f.Fuse(list("x", "y", "z"), list("z", "w", "x"))
			assert.Equal(t, first, again)
		}
	})

	t.Run("keeps higher similarity rendition of duplicates", func(t *testing.T) {
		lexical := list("p1")
		semantic := []entity.SemanticCandidate{{
			CandidateProduct: entity.CandidateProduct{ID: "p1", DisplayName: "p1"},
			Similarity:       0.9,
		}}

		f := NewFuser(60)
		got := f.Fuse(lexical, semantic)
		require.Len(t, got, 1)
		assert.Equal(t, 0.9, got[0].Candidate.Similarity)
	})

	t.Run("empty input", func(t *testing.T) {
		f := NewFuser(0)
		assert.Empty(t, f.Fuse())
		assert.Empty(t, f.Fuse(nil, nil))
	})
}
