// =============================================================================
// HS Code Reconciler - Grid Model and Row-Set Normalizer
// =============================================================================
//
// A Grid is the in-memory form of one worksheet: an ordered list of rows, each
// an ordered list of cell texts. Rows may have different lengths and may be
// entirely blank. A cell that is absent (past the end of its row) and a cell
// holding "" are both treated as empty everywhere downstream.
//
// ROW LAYOUT:
//   Row 0 is always the header row. Source workbooks commonly contain one or
//   more fully-blank rows directly below the header before the line items
//   begin; Normalize skips them so that positional pairing and field
//   extraction see only data rows.
//
// =============================================================================

package grid

import "strings"

// Grid is a ragged 2-D sequence of cell texts. Row 0 is the header.
type Grid [][]string

// Row is a single grid row.
type Row []string

// Cell returns the text at (row, col), or "" when the position is absent.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	return Row(g[row]).Cell(col)
}

// Cell returns the text at col, or "" when the row is too short.
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// IsEmpty reports whether the row has no non-empty cell.
func (r Row) IsEmpty() bool {
	for _, cell := range r {
		if cell != "" {
			return false
		}
	}
	return true
}

// Header returns the header row, or nil for an empty grid.
func (g Grid) Header() Row {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// Width returns the length of the longest row.
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		width = max(width, len(row))
	}
	return width
}

// =============================================================================
// ROW-SET NORMALIZER
// =============================================================================

// Normalized is the data portion of a grid.
type Normalized struct {
	// Rows holds the grid rows from DataStartRow to the end.
	Rows Grid

	// DataStartRow is the 0-based index of the first data row in the source
	// grid. Add 1 to get the workbook row number of Rows[0].
	DataStartRow int
}

// SourceRow returns the 1-based workbook row number of Rows[i].
func (n Normalized) SourceRow(i int) int {
	return n.DataStartRow + i + 1
}

// Normalize locates the first data row below the header.
//
// Starting at row 1, the first row containing at least one non-empty cell is
// the data start row. If no such row exists the data start row stays at 1 and
// the (blank) remainder is returned unchanged.
//
// A grid with fewer than two rows has no data: Rows is empty.
func Normalize(g Grid) Normalized {
	start := 1
	for i := 1; i < len(g); i++ {
		if !Row(g[i]).IsEmpty() {
			start = i
			break
		}
	}

	if start >= len(g) {
		return Normalized{Rows: Grid{}, DataStartRow: start}
	}
	return Normalized{Rows: g[start:], DataStartRow: start}
}

// TrimmedCell returns the whitespace-trimmed text at col.
func (r Row) TrimmedCell(col int) string {
	return strings.TrimSpace(r.Cell(col))
}
