package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingColumns(t *testing.T) {
	assert.Empty(t, missingColumns([]string{"candidate_id", "usage_guidance", "key_features", "specs", "attributes", "extra"}))
	assert.Equal(t, []string{"specs", "attributes"}, missingColumns([]string{"candidate_id", "usage_guidance", "key_features"}))
	assert.Len(t, missingColumns(nil), 5)
}

func TestAnyLike(t *testing.T) {
	cond, args := anyLike([]string{`8"`, "200mm"})
	assert.Equal(t, "(display_name ILIKE ? OR display_name ILIKE ?)", cond)
	assert.Equal(t, []interface{}{`%8"%`, "%200mm%"}, args)

	cond, args = anyLike(nil)
	assert.Empty(t, cond)
	assert.Nil(t, args)

	cond, args = anyLike([]string{""})
	assert.Empty(t, cond)
	assert.Nil(t, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_deal`, escapeLike("50% off_deal"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
}
