package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	e := NewExpander()

	t.Run("jargon brings in the full group", func(t *testing.T) {
		got := e.Expand([]string{"cmu"})
		assert.Contains(t, got, "cmu")
		assert.Contains(t, got, "masonry block")
		assert.Contains(t, got, "concrete block")
		assert.Contains(t, got, "cinder block")
	})

	t.Run("phrase key matches across adjacent keywords", func(t *testing.T) {
		got := e.Expand([]string{"8", "inch", "masonry", "block"})
		assert.Contains(t, got, "cmu")
		assert.Contains(t, got, "concrete block")
	})

	t.Run("substring of a keyword matches a key", func(t *testing.T) {
		got := e.Expand([]string{"galvanized"})
		assert.Contains(t, got, "zinc coated")
	})

	t.Run("unmatched keywords pass through unchanged", func(t *testing.T) {
		got := e.Expand([]string{"widget", "flux"})
		assert.Equal(t, []string{"widget", "flux"}, got)
	})

	t.Run("inputs come first and output is deduplicated", func(t *testing.T) {
		got := e.Expand([]string{"rebar", "rebar", "REBAR"})
		assert.Equal(t, "rebar", got[0])
		counts := map[string]int{}
		for _, term := range got {
			counts[term]++
		}
		for term, n := range counts {
			assert.Equal(t, 1, n, term)
		}
	})
}

// 扩展是幂等的：对已扩展的集合再次扩展不产生新术语
func TestExpandIdempotent(t *testing.T) {
	e := NewExpander()

	inputs := [][]string{
		{"cmu"},
		{"8", "inch", "masonry", "block"},
		{"galvanized", "rebar"},
		{"drywall", "screws"},
		{"emt", "conduit", "stud"},
	}

	for _, in := range inputs {
		once := e.Expand(in)
		twice := e.Expand(once)
		assert.ElementsMatch(t, once, twice, "input %v", in)
	}
}
