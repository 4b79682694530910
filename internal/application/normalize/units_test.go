package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "whole imperial",
			text: `8 inch masonry block`,
			want: []string{`8"`, "8in", "8 in", "8 inch", "200mm", "200 mm", "200 millimeter"},
		},
		{
			name: "quote symbol",
			text: `block 8" nominal`,
			want: []string{`8"`, "8in", "8 in", "8 inch", "200mm", "200 mm", "200 millimeter"},
		},
		{
			name: "fractional imperial",
			text: `1/2 in rebar`,
			want: []string{`1/2"`, "1/2in", "1/2 in", "1/2 inch", "15mm", "15 mm", "15 millimeter"},
		},
		{
			name: "mixed fraction",
			text: `1 1/2 inch emt conduit`,
			want: []string{`1 1/2"`, "1 1/2in", "1 1/2 in", "1 1/2 inch", "40mm", "40 mm", "40 millimeter"},
		},
		{
			name: "metric input",
			text: `rebar 200mm`,
			want: []string{`8"`, "8in", "8 in", "8 inch", "200mm", "200 mm", "200 millimeter"},
		},
		{
			name: "metric with space and long unit",
			text: `anchor 15 millimetres`,
			want: []string{`1/2"`, "1/2in", "1/2 in", "1/2 inch", "15mm", "15 mm", "15 millimeter"},
		},
		{
			name: "decimal within tolerance rounds to step",
			text: `pipe 0.52 in`,
			want: []string{`1/2"`, "1/2in", "1/2 in", "1/2 inch", "15mm", "15 mm", "15 millimeter"},
		},
		{
			name: "off table out of tolerance keeps literal only",
			text: `beam 7 inch web`,
			want: []string{"7 inch"},
		},
		{
			name: "no size pattern",
			text: "masonry block",
			want: nil,
		},
		{
			name: "bare number without unit",
			text: "order 8 pallets",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SizeVariants(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 表内每个公称档位在两套单位制间往返换算应回到原值
func TestReconcileRoundTrip(t *testing.T) {
	for _, step := range canonicalSteps {
		inch, mm, ok := reconcile(sizeMatch{Value: step.Inch, System: systemImperial})
		require.True(t, ok, "imperial %v should reconcile", step.Inch)
		assert.Equal(t, step.Inch, inch)
		assert.Equal(t, step.MM, mm)

		inch2, mm2, ok := reconcile(sizeMatch{Value: mm, System: systemMetric})
		require.True(t, ok, "metric %v should reconcile", mm)
		assert.Equal(t, step.Inch, inch2)
		assert.Equal(t, step.MM, mm2)
	}
}

func TestParseImperialValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"8", 8},
		{"0.5", 0.5},
		{"1/2", 0.5},
		{"3/8", 0.375},
		{"1 1/2", 1.5},
		{"2 1/4", 2.25},
	}
	for _, tt := range tests {
		got, err := parseImperialValue(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	_, err := parseImperialValue("1/0")
	assert.Error(t, err)
}

func TestFormatInch(t *testing.T) {
	assert.Equal(t, "8", formatInch(8))
	assert.Equal(t, "1/2", formatInch(0.5))
	assert.Equal(t, "3/8", formatInch(0.375))
	assert.Equal(t, "1 1/2", formatInch(1.5))
	assert.Equal(t, "2 1/2", formatInch(2.5))
}
