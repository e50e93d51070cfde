// =============================================================================
// HS Code Reconciler - Describe Command
// =============================================================================
//
// This file defines the 'describe' command, which extracts the free-text
// description block from one or more invoices.
//
// COMMAND USAGE:
//   reconciler describe <invoice-or-directory>... [flags]
//
// FLAGS:
//   --format      : Output formats (xlsx, csv)
//   --output-dir  : Override the configured output directory
//   --dry-run     : Print the descriptions without writing files
//
// Directory arguments are expanded to the supported files they contain. Each
// invoice is processed concurrently; a failure in one does not stop the rest.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/hscode-reconciler/internal/analyzer"
	"github.com/ginjaninja78/hscode-reconciler/internal/exporter"
	"github.com/ginjaninja78/hscode-reconciler/internal/xlsxparser"
	"github.com/ginjaninja78/hscode-reconciler/pkg/utils"
)

var (
	describeFormats []string
	describeDryRun  bool
)

// describeCmd represents the 'describe' command.
var describeCmd = &cobra.Command{
	Use:   "describe <invoice-or-directory>...",
	Short: "Extract the description block from invoices",
	Long: `The describe command reads the description block of each invoice: the rows
below the line items in the description column, up to the row that contains
the sentinel text (by default "net weight").

Directories are scanned for .xlsx, .xls and .csv files. Files are processed
concurrently, and errors in one file do not affect the others.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runDescribe(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().StringSliceVarP(&describeFormats, "format", "f", []string{string(analyzer.FormatXLSX)}, "Output formats (xlsx, csv)")
	describeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (overrides the config file)")
	describeCmd.Flags().BoolVar(&describeDryRun, "dry-run", false, "Print descriptions without writing output files")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	formats, err := analyzer.ParseOutputFormats(describeFormats)
	if err != nil {
		return err
	}
	if describeDryRun {
		formats = nil
	}

	inputFiles, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No supported files found.")
		return nil
	}

	cfg := commandConfig()
	batch := len(inputFiles) > 1

	// =========================================================================
	// PROCESS FILES CONCURRENTLY
	// =========================================================================

	var wg sync.WaitGroup
	results := make(chan analyzer.DescribeResult, len(inputFiles))

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			fileCfg := *cfg
			if batch {
				fileCfg.OutputNameFormat = batchNameFormat(path, cfg.OutputNameFormat)
			}
			a := analyzer.New(&fileCfg, analyzer.WithLogger(logger))
			results <- a.Describe(cmd.Context(), path, formats)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// COLLECT RESULTS
	// =========================================================================

	collected := make(map[string]analyzer.DescribeResult, len(inputFiles))
	for result := range results {
		collected[result.InputPath] = result
	}

	var failed []string
	for _, path := range inputFiles {
		result := collected[path]
		fmt.Fprintf(out, "\n=== %s ===\n", filepath.Base(path))
		if !result.Success {
			failed = append(failed, fmt.Sprintf("%s: %v", filepath.Base(path), result.Error))
			fmt.Fprintf(out, "  ✗ %v\n", result.Error)
			continue
		}
		if err := exporter.WriteDescriptionTable(out, result.Descriptions); err != nil {
			logger.Warn().Err(err).Msg("Failed to render description table")
		}
		for _, file := range result.OutputFiles {
			fmt.Fprintf(out, "  ✓ %s\n", file)
		}
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(inputFiles))
	fmt.Fprintf(out, "Successful:      %d\n", len(inputFiles)-len(failed))
	fmt.Fprintf(out, "Errors:          %d\n", len(failed))
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime))

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d file(s) failed:\n  %s", len(failed), len(inputFiles), strings.Join(failed, "\n  "))
	}
	return nil
}

// expandInputs replaces each directory argument with the supported files
// it contains.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := utils.DiscoverInputFiles(arg, xlsxparser.SupportedExtensions)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// batchNameFormat prefixes format with the input's file stem and makes sure
// it contains {uuid}, so inputs sharing a stem ("a.xlsx", "a.csv") processed
// in the same second never write to the same path.
func batchNameFormat(path, format string) string {
	name := fileStem(path) + "_" + format
	if !strings.Contains(format, "{uuid}") {
		name += "_{uuid}"
	}
	return name
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
