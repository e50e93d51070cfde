// =============================================================================
// HS Code Reconciler - Reconcile Command
// =============================================================================
//
// This file defines the 'reconcile' command, the main command of the CLI. It
// pairs an invoice with its packing list and writes the HS code reports.
//
// COMMAND USAGE:
//   reconciler reconcile --invoice inv.xlsx --packing-list pl.xlsx [flags]
//
// FLAGS:
//   --format          : Output formats (xlsx, csv). Repeat or comma-separate.
//   --output-dir      : Override the configured output directory
//   --dry-run         : Reconcile and print, but write no files
//   --strict          : Stop the run when validation finds errors
//   --summary-log     : Write a processing summary text file
//   --hs-code, --amount, --cartons, --net-weight, --gross-weight :
//                       Override the configured column mapping
//
// PROCESSING PIPELINE:
//   1. Decode both workbooks (first sheet only)
//   2. Validate them against the column mapping
//   3. Build invoice and packing list records
//   4. Pair the records by position and aggregate by HS code
//   5. Extract the invoice description block
//   6. Write the output files and print the summary table
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/hscode-reconciler/internal/analyzer"
	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/exporter"
	"github.com/ginjaninja78/hscode-reconciler/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	invoicePath     string
	packingListPath string
	outputFormats   []string
	outputDir       string
	dryRun          bool
	strict          bool
	summaryLog      bool
)

// mappingFlags holds the column mapping overrides.
var mappingFlags struct {
	hsCode      []string
	amount      []string
	cartons     []string
	netWeight   []string
	grossWeight []string
}

// =============================================================================
// RECONCILE COMMAND DEFINITION
// =============================================================================

// reconcileCmd represents the 'reconcile' command.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile an invoice with its packing list by HS code",
	Long: `The reconcile command pairs the N-th invoice line with the N-th packing list
line, then totals amount, gross weight, net weight and cartons per HS code.

Both files must be .xlsx, .xls or .csv. Only the first sheet of a workbook is
read. Column references accept letters (F, AA) or 1-based numbers.

Validation findings are printed as warnings. The run fails only when the
invoice, the packing list or the pairing produces no rows. Use --strict to stop
on validation errors instead.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(reconcileCmd)

	flags := reconcileCmd.Flags()
	flags.StringVarP(&invoicePath, "invoice", "i", "", "Path to the invoice file")
	flags.StringVarP(&packingListPath, "packing-list", "p", "", "Path to the packing list file")
	flags.StringSliceVarP(&outputFormats, "format", "f", []string{string(analyzer.FormatXLSX)}, "Output formats (xlsx, csv)")
	flags.StringVarP(&outputDir, "output-dir", "o", "", "Output directory (overrides the config file)")
	flags.BoolVar(&dryRun, "dry-run", false, "Reconcile without writing output files")
	flags.BoolVar(&strict, "strict", false, "Stop the run when validation finds errors")
	flags.BoolVar(&summaryLog, "summary-log", false, "Write a processing summary to the output directory")

	flags.StringSliceVar(&mappingFlags.hsCode, "hs-code", nil, "Invoice HS code column(s)")
	flags.StringSliceVar(&mappingFlags.amount, "amount", nil, "Invoice amount column(s), in fallback order")
	flags.StringSliceVar(&mappingFlags.cartons, "cartons", nil, "Packing list carton column(s)")
	flags.StringSliceVar(&mappingFlags.netWeight, "net-weight", nil, "Packing list net weight column(s)")
	flags.StringSliceVar(&mappingFlags.grossWeight, "gross-weight", nil, "Packing list gross weight column(s)")

	reconcileCmd.MarkFlagRequired("invoice")
	reconcileCmd.MarkFlagRequired("packing-list")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runReconcile(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	formats, err := analyzer.ParseOutputFormats(outputFormats)
	if err != nil {
		return err
	}
	if dryRun {
		formats = nil
	}

	cfg := commandConfig()
	mapping := applyMappingFlags(cfg.Mapping)
	if refs := mapping.InvalidReferences(); len(refs) > 0 {
		return fmt.Errorf("invalid column references: %v", refs)
	}

	fmt.Fprintln(out, "=== HS Code Reconciler ===")
	fmt.Fprintf(out, "Invoice:      %s\n", invoicePath)
	fmt.Fprintf(out, "Packing list: %s\n\n", packingListPath)

	a := analyzer.New(cfg, analyzer.WithLogger(logger))
	result := a.Run(cmd.Context(), analyzer.Request{
		InvoicePath:     invoicePath,
		PackingListPath: packingListPath,
		Mapping:         &mapping,
		Formats:         formats,
		Strict:          strict,
	})

	if summaryLog && !dryRun {
		if err := writeRunSummary(out, cfg.OutputDir, startTime, result); err != nil {
			logger.Warn().Err(err).Msg("Failed to write summary log")
		}
	}

	if !result.Success {
		fmt.Fprintf(out, "  ✗ %v\n", result.Error)
		return result.Error
	}

	printAnalysis(out, result)
	return nil
}

// printAnalysis prints the summary table, warnings and written files.
func printAnalysis(out io.Writer, result analyzer.Result) {
	analysis := result.Analysis

	if err := exporter.WriteSummaryTable(out, analysis.Result()); err != nil {
		logger.Warn().Err(err).Msg("Failed to render summary table")
	}

	if len(analysis.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range analysis.Warnings {
			fmt.Fprintf(out, "  ! %s\n", w)
		}
	}

	stats := analysis.Stats
	fmt.Fprintln(out, "\n=== Reconciliation Complete ===")
	fmt.Fprintf(out, "Invoice lines:      %d\n", stats.InvoiceRecords)
	fmt.Fprintf(out, "Packing list lines: %d\n", stats.PackingListRecords)
	fmt.Fprintf(out, "Paired lines:       %d\n", stats.DetailRows)
	fmt.Fprintf(out, "HS codes:           %d\n", stats.SummaryRows)
	fmt.Fprintf(out, "Descriptions:       %d\n", stats.Descriptions)
	fmt.Fprintf(out, "Time elapsed:       %s\n", stats.ProcessingTime)

	for _, file := range result.OutputFiles {
		fmt.Fprintf(out, "  ✓ %s\n", file)
	}
}

// writeRunSummary writes the processing summary log for a single run.
func writeRunSummary(out io.Writer, dir string, startTime time.Time, result analyzer.Result) error {
	inputs := []string{filepath.Base(result.InvoicePath), filepath.Base(result.PackingListPath)}
	summary := utils.RunSummary{StartTime: startTime, EndTime: time.Now()}

	if result.Success {
		stats := result.Analysis.Stats
		summary.Processed = append(summary.Processed, utils.ProcessedRunInfo{
			Inputs:      inputs,
			OutputFiles: result.OutputFiles,
			Lines:       stats.DetailRows,
			Keys:        stats.SummaryRows,
			ProcessTime: stats.ProcessingTime,
		})
		summary.TotalLines = stats.DetailRows
		summary.TotalKeys = stats.SummaryRows
		summary.Warnings = len(result.Analysis.Warnings)
	} else {
		summary.FailedRuns = append(summary.FailedRuns, utils.FailedRunInfo{
			Inputs:       inputs,
			ErrorMessage: result.Error.Error(),
		})
	}

	if err := utils.NewFileManager(dir, "").EnsureDirectories(); err != nil {
		return err
	}
	path, err := utils.WriteSummaryLog(summary, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Summary log: %s\n", path)
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// commandConfig returns a copy of the loaded config with command-line
// overrides applied.
func commandConfig() *config.Config {
	cfg := *appConfig
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return &cfg
}

// applyMappingFlags overlays the mapping flags that were set on base.
func applyMappingFlags(base config.ColumnMapping) config.ColumnMapping {
	m := base
	if len(mappingFlags.hsCode) > 0 {
		m.Invoice.HSCode = mappingFlags.hsCode
	}
	if len(mappingFlags.amount) > 0 {
		m.Invoice.Amount = mappingFlags.amount
	}
	if len(mappingFlags.cartons) > 0 {
		m.PackingList.Cartons = mappingFlags.cartons
	}
	if len(mappingFlags.netWeight) > 0 {
		m.PackingList.NetWeight = mappingFlags.netWeight
	}
	if len(mappingFlags.grossWeight) > 0 {
		m.PackingList.GrossWeight = mappingFlags.grossWeight
	}
	return m
}
