package extract_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/hscode-reconciler/internal/extract"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
)

func TestParseMultiValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"single", "12", 12},
		{"plus", "12+8", 20},
		{"comma and space", "12, 8", 20},
		{"letters only", "abc", 0},
		{"empty", "", 0},
		{"negative", "-5", -5},
		{"units stripped", "12kg + 8kg", 20},
		{"decimals", "1.5 2.25", 3.75},
		{"whitespace runs", "  3 \t 4\n5 ", 12},
		{"lone minus ignored", "- 4", 4},
		{"trailing garbage after number", "1.2.3", 1.2},
		{"embedded minus", "5-3", 5},
		{"full-width digits", "１２＋８", 20},
		{"cartons label", "CTN: 10", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, extract.ParseMultiValue(tt.in), 1e-9)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{" 12.50 ", 12.5},
		{"7 USD", 7},
		{"USD 7", 0},
		{"1,234.56", 1},
		{"1.5E2", 150},
		{"-3", -3},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, extract.ParseNumber(tt.in), 1e-9)
		})
	}
}

func TestFallback(t *testing.T) {
	row := grid.Row{"", "  ", " 8471.30 ", "9999"}

	assert.Equal(t, "8471.30", extract.Fallback(row, []int{0, 1, 2, 3}))
	assert.Equal(t, "9999", extract.Fallback(row, []int{3, 2}))
	assert.Equal(t, "", extract.Fallback(row, []int{0, 1, 10}))
	assert.Equal(t, "", extract.Fallback(row, nil))
}

func TestSums(t *testing.T) {
	row := grid.Row{"10", "5+5", "abc", "2.5"}

	assert.InDelta(t, 12.5, extract.SumNumbers(row, []int{0, 2, 3}), 1e-9)
	assert.InDelta(t, 15, extract.SumNumbers(row, []int{0, 1}), 1e-9, "direct parse reads only the leading 5")
	assert.InDelta(t, 20, extract.SumMultiValue(row, []int{0, 1}), 1e-9)
	assert.InDelta(t, 0, extract.SumMultiValue(row, []int{2, 9}), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 12.5, extract.Clamp(12.5))
	assert.Equal(t, math.MaxFloat64, extract.Clamp(math.Inf(1)))
	assert.Equal(t, -math.MaxFloat64, extract.Clamp(math.Inf(-1)))
	assert.Equal(t, 0.0, extract.Clamp(math.NaN()))
}

func TestSumsSaturateOnOverflow(t *testing.T) {
	row := grid.Row{"1e308", "1e308", "-1e308", "-1e308"}
	assert.Equal(t, math.MaxFloat64, extract.SumNumbers(row, []int{0, 1}))
	assert.Equal(t, -math.MaxFloat64, extract.SumNumbers(row, []int{2, 3}))

	// 1 followed by 308 zeros is 1e308; two of them overflow float64.
	big := "1" + strings.Repeat("0", 308)
	assert.Equal(t, math.MaxFloat64, extract.ParseMultiValue(big+"+"+big))
	assert.Equal(t, math.MaxFloat64, extract.SumMultiValue(grid.Row{big, big}, []int{0, 1}))

	// A single value past the float64 range does not parse.
	assert.Equal(t, 0.0, extract.ParseNumber("1e400"))
}
