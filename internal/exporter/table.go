package exporter

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ginjaninja78/hscode-reconciler/internal/reconciler"
	"github.com/ginjaninja78/hscode-reconciler/internal/types"
)

// summaryAlignment left-aligns the HS code and right-aligns the numbers.
var summaryAlignment = []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight}

// WriteSummaryTable renders the summary as a text table with a totals footer.
func WriteSummaryTable(w io.Writer, result *reconciler.Result) error {
	table := newTable(w, summaryAlignment)
	table.Header(toAny(SummaryHeaders)...)

	for _, s := range result.Summary {
		if err := table.Append(
			s.Key,
			FormatFixed(s.TotalAmount),
			FormatFixed(s.TotalGrossWeight),
			FormatFixed(s.TotalNetWeight),
			FormatFixed(s.TotalCartons),
			strconv.Itoa(s.LineCount),
		); err != nil {
			return err
		}
	}

	totals := result.Totals()
	table.Footer(
		"TOTAL",
		FormatFixed(totals.Amount),
		FormatFixed(totals.GrossWeight),
		FormatFixed(totals.NetWeight),
		FormatFixed(totals.Cartons),
		strconv.Itoa(totals.Lines),
	)

	return table.Render()
}

// WriteDescriptionTable renders description entries as a text table.
func WriteDescriptionTable(w io.Writer, entries []types.DescriptionEntry) error {
	table := newTable(w, []tw.Align{tw.AlignRight, tw.AlignLeft})
	table.Header(toAny(DescriptionHeaders)...)

	for _, e := range entries {
		if err := table.Append(strconv.Itoa(e.RowNumber), e.Text); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteGridTable renders headers and string rows as a text table.
func WriteGridTable(w io.Writer, headers []string, rows [][]string) error {
	table := newTable(w, nil)
	table.Header(toAny(headers)...)

	for _, row := range rows {
		if err := table.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func newTable(w io.Writer, align []tw.Align) *tablewriter.Table {
	config := tablewriter.Config{}
	if len(align) > 0 {
		config.Header.Alignment = tw.CellAlignment{PerColumn: align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
		config.Footer.Alignment = tw.CellAlignment{PerColumn: align}
	}
	return tablewriter.NewTable(w, tablewriter.WithConfig(config))
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
