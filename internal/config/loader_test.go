package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("BOM_TEST_HOST", "db.internal")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "host: ${BOM_TEST_HOST}", "host: db.internal"},
		{"set variable ignores default", "host: ${BOM_TEST_HOST:fallback}", "host: db.internal"},
		{"unset with default", "host: ${BOM_TEST_MISSING:localhost}", "host: localhost"},
		{"unset with empty default", "password: ${BOM_TEST_MISSING:}", "password: "},
		{"unset without default kept verbatim", "host: ${BOM_TEST_MISSING}", "host: ${BOM_TEST_MISSING}"},
		{"no placeholder", "port: 5432", "port: 5432"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.input))
		})
	}
}
