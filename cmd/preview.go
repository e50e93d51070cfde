// =============================================================================
// HS Code Reconciler - Preview Command
// =============================================================================
//
// This file defines the 'preview' command, which shows the headers, the first
// data rows and the per-column contents of a file so a column mapping can be
// chosen.
//
// COMMAND USAGE:
//   reconciler preview <file> [--kind invoice|packing_list] [--rows 10]
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/hscode-reconciler/internal/analyzer"
	"github.com/ginjaninja78/hscode-reconciler/internal/exporter"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
	"github.com/ginjaninja78/hscode-reconciler/internal/validation"
	"github.com/ginjaninja78/hscode-reconciler/internal/xlsxparser"
)

var (
	previewKind string
	previewRows int
)

// previewCmd represents the 'preview' command.
var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the headers and column contents of a file",
	Long: `The preview command prints the header row, the first data rows and, for each
of the leading columns, whether it holds data and a few sample values.

With --kind, the file is also validated against the configured column
mapping as an invoice or a packing list.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewKind, "kind", "k", "", "Validate as invoice or packing_list")
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", grid.DefaultPreviewOptions().SampleRows, "Number of sample rows to show")
}

func runPreview(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	kind := validation.Kind(previewKind)
	switch kind {
	case "", validation.KindInvoice, validation.KindPackingList:
	default:
		return fmt.Errorf("invalid kind %q (expected invoice or packing_list)", previewKind)
	}
	if err := validation.ValidateExtension(path); err != nil {
		return err
	}

	a := analyzer.New(appConfig, analyzer.WithLogger(logger))
	g, err := xlsxparser.ReadFile(path, a.ReadOptions())
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	opts := grid.DefaultPreviewOptions()
	opts.SampleRows = previewRows
	preview := grid.BuildPreview(g, opts)

	fmt.Fprintf(out, "File:           %s\n", path)
	fmt.Fprintf(out, "Data rows:      %d\n", preview.TotalRows)
	fmt.Fprintf(out, "Data start row: %d\n\n", preview.DataStartRow)

	// Sample rows use the header as column titles.
	if err := exporter.WriteGridTable(out, preview.Headers, fitRows(preview.SampleRows, len(preview.Headers))); err != nil {
		return err
	}

	columns := make([][]string, 0, len(preview.Columns))
	for _, col := range preview.Columns {
		hasData := "no"
		if col.HasData {
			hasData = "yes"
		}
		columns = append(columns, []string{col.Name, col.Header, hasData, strings.Join(col.SampleValues, " | ")})
	}
	fmt.Fprintln(out)
	if err := exporter.WriteGridTable(out, []string{"Column", "Header", "Has Data", "Samples"}, columns); err != nil {
		return err
	}

	if kind == "" {
		return nil
	}

	report := validation.ValidateGrid(g, kind, appConfig.Mapping)
	fmt.Fprintf(out, "\nValidation: %s\n", report.Summary())
	for _, issue := range report.Issues {
		fmt.Fprintf(out, "  [%s] %s\n", issue.Severity, issue.Message)
	}
	return nil
}

// fitRows pads or truncates each row to width cells.
func fitRows(rows grid.Grid, width int) [][]string {
	fitted := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		for col := range cells {
			cells[col] = grid.Row(row).Cell(col)
		}
		fitted[i] = cells
	}
	return fitted
}
