// =============================================================================
// HS Code Reconciler - Record Builders
// =============================================================================
//
// The builders turn normalized grid rows into validated invoice and
// packing-list records. Rows that do not carry usable values are dropped
// silently; this is filtering, not an error.
//
// ORDERING:
//   Both builders emit records in source row order. The reconciler pairs the
//   two record lists by position, so this order must never change.
//
// =============================================================================

package records

import (
	"github.com/ginjaninja78/hscode-reconciler/internal/extract"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
	"github.com/ginjaninja78/hscode-reconciler/internal/types"
)

// InvoiceColumns holds the resolved column indices for the invoice table.
type InvoiceColumns struct {
	// Key lists candidate key columns; the first non-empty one wins.
	Key []int

	// Amount lists amount columns; their values are summed.
	Amount []int
}

// PackingListColumns holds the resolved column indices for the packing list.
// Every field sums its columns using the multi-value parser.
type PackingListColumns struct {
	Cartons     []int
	NetWeight   []int
	GrossWeight []int
}

// BuildInvoiceRecords extracts invoice records from g.
//
// For each data row the key is the first non-empty key column and the amount
// is the sum of the direct numeric value of each amount column. A record is
// emitted only when the key is non-empty and the amount is positive.
func BuildInvoiceRecords(g grid.Grid, cols InvoiceColumns) []types.InvoiceRecord {
	if len(g) < 2 {
		return nil
	}

	norm := grid.Normalize(g)
	var out []types.InvoiceRecord

	for i, row := range norm.Rows {
		key := extract.Fallback(row, cols.Key)
		amount := extract.SumNumbers(row, cols.Amount)

		if key == "" || amount <= 0 {
			continue
		}

		out = append(out, types.InvoiceRecord{
			Key:       key,
			Amount:    amount,
			SourceRow: norm.SourceRow(i),
		})
	}

	return out
}

// BuildPackingListRecords extracts packing-list records from g.
//
// Cartons, net weight and gross weight each sum the multi-value parse of their
// columns. A record is emitted when at least one of the three is positive.
func BuildPackingListRecords(g grid.Grid, cols PackingListColumns) []types.PackingListRecord {
	if len(g) < 2 {
		return nil
	}

	norm := grid.Normalize(g)
	var out []types.PackingListRecord

	for i, row := range norm.Rows {
		rec := types.PackingListRecord{
			Cartons:     extract.SumMultiValue(row, cols.Cartons),
			NetWeight:   extract.SumMultiValue(row, cols.NetWeight),
			GrossWeight: extract.SumMultiValue(row, cols.GrossWeight),
			SourceRow:   norm.SourceRow(i),
		}

		if rec.Cartons <= 0 && rec.NetWeight <= 0 && rec.GrossWeight <= 0 {
			continue
		}

		out = append(out, rec)
	}

	return out
}
