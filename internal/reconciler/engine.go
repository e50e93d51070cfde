// =============================================================================
// HS Code Reconciler - Reconciliation and Aggregation Engine
// =============================================================================
//
// The engine pairs invoice records with packing-list records and aggregates
// the pairs by key.
//
// PAIRING:
//   Pairing is strictly positional. The invoice record at index i is paired
//   with the packing-list record at index i of its own (independently
//   filtered) list. The two source tables are expected to list the same
//   physical line items in the same order; keys are never joined. Extra
//   records on either side are ignored.
//
// AGGREGATION:
//   Detail rows are grouped by key. Amounts, weights and cartons are summed
//   in decimal arithmetic so that totals do not pick up binary rounding drift,
//   then returned as float64. The summary is sorted by key with plain
//   lexicographic string comparison.
//
// The engine is a pure function of its inputs and holds no state between
// runs.
//
// =============================================================================

package reconciler

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	recerrors "github.com/ginjaninja78/hscode-reconciler/internal/errors"
	"github.com/ginjaninja78/hscode-reconciler/internal/extract"
	"github.com/ginjaninja78/hscode-reconciler/internal/types"
)

// Result holds the output of one reconciliation run.
type Result struct {
	// Details is the positional pairing, in line order.
	Details []types.DetailRow `json:"details"`

	// Summary holds one row per key, sorted by key.
	Summary []types.SummaryRow `json:"summary"`
}

// Reconcile pairs invoices with packing-list records by position and
// aggregates the pairs by key.
//
// RETURNS:
//   - The detail and summary rows.
//   - A NoDataError naming the invoice or packing-list stage when either input
//     is empty, or the pairing stage when no pair could be formed.
func Reconcile(invoices []types.InvoiceRecord, packing []types.PackingListRecord) (*Result, error) {
	if len(invoices) == 0 {
		return nil, recerrors.NewNoDataError(recerrors.StageInvoice)
	}
	if len(packing) == 0 {
		return nil, recerrors.NewNoDataError(recerrors.StagePackingList)
	}

	details := Pair(invoices, packing)
	summary := Summarize(details)

	if len(summary) == 0 {
		return nil, recerrors.NewNoDataError(recerrors.StagePairing)
	}

	return &Result{Details: details, Summary: summary}, nil
}

// Pair builds one detail row for each index present in both lists whose
// invoice key is non-empty.
func Pair(invoices []types.InvoiceRecord, packing []types.PackingListRecord) []types.DetailRow {
	var details []types.DetailRow

	for i, inv := range invoices {
		if i >= len(packing) || inv.Key == "" {
			continue
		}
		pl := packing[i]

		details = append(details, types.DetailRow{
			LineNumber:  i + 1,
			Key:         inv.Key,
			Amount:      inv.Amount,
			GrossWeight: pl.GrossWeight,
			NetWeight:   pl.NetWeight,
			Cartons:     pl.Cartons,
		})
	}

	return details
}

// accumulator sums one key's detail rows.
type accumulator struct {
	key         string
	amount      decimal.Decimal
	grossWeight decimal.Decimal
	netWeight   decimal.Decimal
	cartons     decimal.Decimal
	lines       int
}

func (a *accumulator) add(amount, grossWeight, netWeight, cartons float64, lines int) {
	a.amount = a.amount.Add(toDecimal(amount))
	a.grossWeight = a.grossWeight.Add(toDecimal(grossWeight))
	a.netWeight = a.netWeight.Add(toDecimal(netWeight))
	a.cartons = a.cartons.Add(toDecimal(cartons))
	a.lines += lines
}

func (a *accumulator) row() types.SummaryRow {
	return types.SummaryRow{
		Key:              a.key,
		TotalAmount:      toFloat(a.amount),
		TotalGrossWeight: toFloat(a.grossWeight),
		TotalNetWeight:   toFloat(a.netWeight),
		TotalCartons:     toFloat(a.cartons),
		LineCount:        a.lines,
	}
}

// toDecimal converts v, saturating non-finite values first.
// decimal.NewFromFloat panics on ±Inf and NaN.
func toDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(extract.Clamp(v))
}

// toFloat converts d back to float64. Totals past the float64 range
// saturate at ±math.MaxFloat64.
func toFloat(d decimal.Decimal) float64 {
	return extract.Clamp(d.InexactFloat64())
}

// Summarize groups detail rows by key and sorts the groups by key.
func Summarize(details []types.DetailRow) []types.SummaryRow {
	groups := make(map[string]*accumulator)
	var order []string

	for _, d := range details {
		acc, ok := groups[d.Key]
		if !ok {
			acc = &accumulator{key: d.Key}
			groups[d.Key] = acc
			order = append(order, d.Key)
		}
		acc.add(d.Amount, d.GrossWeight, d.NetWeight, d.Cartons, 1)
	}

	summary := make([]types.SummaryRow, 0, len(order))
	for _, key := range order {
		summary = append(summary, groups[key].row())
	}

	slices.SortStableFunc(summary, func(a, b types.SummaryRow) int {
		return strings.Compare(a.Key, b.Key)
	})

	return summary
}

// Totals is the grand total across every summary row.
type Totals struct {
	Keys        int     `json:"keys"`
	Lines       int     `json:"lines"`
	Amount      float64 `json:"amount"`
	GrossWeight float64 `json:"grossWeight"`
	NetWeight   float64 `json:"netWeight"`
	Cartons     float64 `json:"cartons"`
}

// Totals computes grand totals over the summary.
func (r *Result) Totals() Totals {
	acc := &accumulator{}
	for _, s := range r.Summary {
		acc.add(s.TotalAmount, s.TotalGrossWeight, s.TotalNetWeight, s.TotalCartons, s.LineCount)
	}
	row := acc.row()

	return Totals{
		Keys:        len(r.Summary),
		Lines:       row.LineCount,
		Amount:      row.TotalAmount,
		GrossWeight: row.TotalGrossWeight,
		NetWeight:   row.TotalNetWeight,
		Cartons:     row.TotalCartons,
	}
}
