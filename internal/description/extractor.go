// Package description extracts the free-text description block that sits in
// a fixed column of an invoice workbook, below the header area and above the
// weight totals.
package description

import (
	"strings"

	"github.com/ginjaninja78/hscode-reconciler/internal/colref"
	recerrors "github.com/ginjaninja78/hscode-reconciler/internal/errors"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
	"github.com/ginjaninja78/hscode-reconciler/internal/types"
)

const (
	// DefaultStartRow is the 0-based row where scanning begins (workbook row 12).
	DefaultStartRow = 11

	// DefaultColumn is the 0-based column scanned (column A).
	DefaultColumn = 0

	// DefaultSentinel ends the block. Matched case-insensitively as a substring.
	DefaultSentinel = "net weight"
)

// Options controls where the block is read from.
type Options struct {
	StartRow int
	Column   int
	Sentinel string
}

// DefaultOptions returns the standard block location.
func DefaultOptions() Options {
	return Options{
		StartRow: DefaultStartRow,
		Column:   DefaultColumn,
		Sentinel: DefaultSentinel,
	}
}

// Extract scans the raw (non-normalized) grid from opts.StartRow down.
//
// Empty cells are skipped without ending the scan. The first cell whose
// trimmed text contains the sentinel ends the scan and is not included.
// Every other non-empty trimmed cell becomes an entry numbered with its
// 1-based workbook row. The scan also ends at the bottom of the grid.
func Extract(g grid.Grid, opts Options) []types.DescriptionEntry {
	sentinel := strings.ToLower(opts.Sentinel)
	var entries []types.DescriptionEntry

	for i := max(opts.StartRow, 0); i < len(g); i++ {
		cell := g.Cell(i, opts.Column)
		if cell == "" {
			continue
		}

		text := strings.TrimSpace(cell)
		if sentinel != "" && strings.Contains(strings.ToLower(text), sentinel) {
			break
		}

		if text != "" {
			entries = append(entries, types.DescriptionEntry{
				RowNumber: i + 1,
				Text:      text,
			})
		}
	}

	return entries
}

// ExtractRequired is Extract, but reports a description-stage NoDataError
// when the block is empty.
func ExtractRequired(g grid.Grid, opts Options) ([]types.DescriptionEntry, error) {
	entries := Extract(g, opts)
	if len(entries) == 0 {
		return nil, recerrors.NewDescriptionNoDataError(colref.Name(opts.Column), max(opts.StartRow, 0)+1)
	}
	return entries, nil
}
