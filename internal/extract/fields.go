package extract

import (
	"strings"

	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
)

// Fallback returns the trimmed text of the first column in cols whose cell is
// non-empty after trimming. It returns "" when every candidate is empty.
func Fallback(row grid.Row, cols []int) string {
	for _, col := range cols {
		if v := strings.TrimSpace(row.Cell(col)); v != "" {
			return v
		}
	}
	return ""
}

// SumNumbers adds the direct numeric value of every column in cols.
func SumNumbers(row grid.Row, cols []int) float64 {
	sum := 0.0
	for _, col := range cols {
		sum += ParseNumber(row.Cell(col))
	}
	return Clamp(sum)
}

// SumMultiValue adds the multi-value sum of every column in cols.
func SumMultiValue(row grid.Row, cols []int) float64 {
	sum := 0.0
	for _, col := range cols {
		sum += ParseMultiValue(row.Cell(col))
	}
	return Clamp(sum)
}
