package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/hscode-reconciler/internal/extract"
	"github.com/ginjaninja78/hscode-reconciler/internal/types"
)

// FormatFixed renders v with two decimal places. Non-finite values are
// saturated to the float64 range first.
func FormatFixed(v float64) string {
	return decimal.NewFromFloat(extract.Clamp(v)).StringFixed(2)
}

// formatCount renders a carton count without padding zeros: 5 -> "5",
// 2.5 -> "2.5".
func formatCount(v float64) string {
	return decimal.NewFromFloat(extract.Clamp(v)).String()
}

// WriteSummaryCSV writes the summary rows as CSV.
// Every total has two decimals; the line count is an integer.
func WriteSummaryCSV(w io.Writer, summary []types.SummaryRow) error {
	records := make([][]string, 0, len(summary)+1)
	records = append(records, SummaryHeaders)
	for _, s := range summary {
		records = append(records, []string{
			s.Key,
			FormatFixed(s.TotalAmount),
			FormatFixed(s.TotalGrossWeight),
			FormatFixed(s.TotalNetWeight),
			FormatFixed(s.TotalCartons),
			strconv.Itoa(s.LineCount),
		})
	}
	return writeCSV(w, records)
}

// WriteDetailCSV writes the line-by-line detail rows as CSV.
func WriteDetailCSV(w io.Writer, details []types.DetailRow) error {
	records := make([][]string, 0, len(details)+1)
	records = append(records, DetailHeaders)
	for _, d := range details {
		records = append(records, []string{
			strconv.Itoa(d.LineNumber),
			d.Key,
			FormatFixed(d.Amount),
			FormatFixed(d.GrossWeight),
			FormatFixed(d.NetWeight),
			formatCount(d.Cartons),
		})
	}
	return writeCSV(w, records)
}

// WriteDescriptionCSV writes description entries as CSV.
func WriteDescriptionCSV(w io.Writer, entries []types.DescriptionEntry) error {
	records := make([][]string, 0, len(entries)+1)
	records = append(records, DescriptionHeaders)
	for _, e := range entries {
		records = append(records, []string{strconv.Itoa(e.RowNumber), e.Text})
	}
	return writeCSV(w, records)
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
