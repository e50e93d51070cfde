// =============================================================================
// HS Code Reconciler - Analyzer Module
// =============================================================================
//
// This module orchestrates a full run, from workbook decoding to output files.
//
// RECONCILIATION PIPELINE (Run):
//   1. Decode the invoice and packing list workbooks
//   2. Validate both grids against the column mapping
//   3. Build invoice and packing-list records
//   4. Pair the records by position and aggregate by HS code
//   5. Extract the invoice description block
//   6. Write the requested output files
//
// DESCRIPTION PIPELINE (Describe):
//   1. Decode the invoice workbook
//   2. Extract the description block (at least one entry is required)
//   3. Write the requested output files
//
// CONCURRENCY:
//   An Analyzer holds only configuration. Runs share no state and may be
//   executed concurrently from several goroutines.
//
// =============================================================================

package analyzer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/description"
	"github.com/ginjaninja78/hscode-reconciler/internal/exporter"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
	"github.com/ginjaninja78/hscode-reconciler/internal/logging"
	"github.com/ginjaninja78/hscode-reconciler/internal/reconciler"
	"github.com/ginjaninja78/hscode-reconciler/internal/records"
	"github.com/ginjaninja78/hscode-reconciler/internal/types"
	"github.com/ginjaninja78/hscode-reconciler/internal/validation"
	"github.com/ginjaninja78/hscode-reconciler/internal/xlsxparser"
	"github.com/ginjaninja78/hscode-reconciler/pkg/utils"
)

// Output kinds, substituted for {kind} in the output name format.
const (
	KindAnalysis     = "hs-code-analysis"
	KindSummary      = "hs-code-summary"
	KindDetails      = "hs-code-details"
	KindDescriptions = "invoice-descriptions"
)

// OutputFormat selects which files a run writes.
type OutputFormat string

const (
	FormatXLSX OutputFormat = "xlsx"
	FormatCSV  OutputFormat = "csv"
)

// ParseOutputFormats converts format names to OutputFormats.
func ParseOutputFormats(names []string) ([]OutputFormat, error) {
	formats := make([]OutputFormat, 0, len(names))
	for _, name := range names {
		switch OutputFormat(name) {
		case FormatXLSX, FormatCSV:
			formats = append(formats, OutputFormat(name))
		default:
			return nil, fmt.Errorf("unsupported output format %q (expected xlsx or csv)", name)
		}
	}
	return formats, nil
}

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Analysis is the in-memory outcome of one reconciliation.
type Analysis struct {
	Details      []types.DetailRow        `json:"details"`
	Summary      []types.SummaryRow       `json:"summary"`
	Totals       reconciler.Totals        `json:"totals"`
	Descriptions []types.DescriptionEntry `json:"descriptions"`

	// Warnings holds non-blocking validation findings.
	Warnings []string `json:"warnings,omitempty"`

	Stats Stats `json:"stats"`
}

// Result returns the reconciliation part of the analysis.
func (a *Analysis) Result() *reconciler.Result {
	return &reconciler.Result{Details: a.Details, Summary: a.Summary}
}

// Stats contains processing statistics.
type Stats struct {
	// InvoiceRows and PackingListRows count data rows after normalization.
	InvoiceRows     int `json:"invoiceRows"`
	PackingListRows int `json:"packingListRows"`

	// InvoiceRecords and PackingListRecords count rows that passed filtering.
	InvoiceRecords     int `json:"invoiceRecords"`
	PackingListRecords int `json:"packingListRecords"`

	DetailRows   int `json:"detailRows"`
	SummaryRows  int `json:"summaryRows"`
	Descriptions int `json:"descriptions"`

	ProcessingTime time.Duration `json:"processingTime"`
}

// Result represents the outcome of a file-based reconciliation run.
type Result struct {
	InvoicePath     string
	PackingListPath string

	// Analysis is nil if the run failed before reconciliation finished.
	Analysis *Analysis

	// OutputFiles lists the files written, in write order.
	OutputFiles []string

	Success bool
	Error   error
}

// DescribeResult represents the outcome of a description-only run.
type DescribeResult struct {
	InputPath    string
	Descriptions []types.DescriptionEntry
	OutputFiles  []string
	Success      bool
	Error        error
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer runs reconciliations with a fixed configuration.
type Analyzer struct {
	cfg    *config.Config
	files  *utils.FileManager
	logger zerolog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default is the package-level logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates a new Analyzer. A nil cfg uses config.Default().
func New(cfg *config.Config, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Analyzer{
		cfg:    cfg,
		files:  utils.NewFileManager(cfg.OutputDir, cfg.OutputNameFormat),
		logger: *logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// Request describes a file-based reconciliation run.
type Request struct {
	InvoicePath     string
	PackingListPath string

	// Mapping overrides the configured column mapping when non-nil.
	Mapping *config.ColumnMapping

	// Formats lists the output files to write. Empty writes nothing.
	Formats []OutputFormat

	// Strict stops the run when validation finds errors. Otherwise validation
	// findings are reported as warnings.
	Strict bool
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the reconciliation pipeline for an invoice and packing list.
//
// RETURNS:
//   - A Result. On failure, Result.Error holds the cause; a NoDataError from
//     the errors package identifies which stage produced nothing.
func (a *Analyzer) Run(ctx context.Context, req Request) Result {
	result := Result{
		InvoicePath:     req.InvoicePath,
		PackingListPath: req.PackingListPath,
	}
	log := a.logger.With().
		Str("invoice", req.InvoicePath).
		Str("packing_list", req.PackingListPath).
		Logger()

	// =========================================================================
	// STEP 1: DECODE WORKBOOKS
	// =========================================================================

	log.Info().Msg("Processing reconciliation")

	invoice, err := a.readGrid(req.InvoicePath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read invoice: %w", err)
		return result
	}
	packing, err := a.readGrid(req.PackingListPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read packing list: %w", err)
		return result
	}
	log.Debug().Int("invoice_rows", len(invoice)).Int("packing_list_rows", len(packing)).Msg("Decoded workbooks")

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEPS 2-5: VALIDATE, BUILD, RECONCILE, EXTRACT
	// =========================================================================

	mapping := a.cfg.Mapping
	if req.Mapping != nil {
		mapping = *req.Mapping
	}

	analysis, err := a.Analyze(ctx, invoice, packing, mapping, req.Strict)
	if err != nil {
		result.Error = err
		return result
	}
	result.Analysis = analysis

	// =========================================================================
	// STEP 6: WRITE OUTPUT FILES
	// =========================================================================

	outputs, err := a.writeAnalysis(analysis, req.Formats)
	result.OutputFiles = outputs
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	for _, out := range outputs {
		log.Info().Str("output", out).Msg("Wrote output")
	}

	result.Success = true
	return result
}

// Analyze reconciles two decoded grids.
//
// PARAMETERS:
//   - invoice: The raw invoice grid (row 0 is the header).
//   - packing: The raw packing list grid.
//   - mapping: The column mapping to apply.
//   - strict: If true, validation errors stop the run. Otherwise they are
//     reported as warnings and only a no-data stage can fail the run.
//
// RETURNS:
//   - The analysis.
//   - An *InputError if strict validation fails, or the reconciler's NoDataError.
func (a *Analyzer) Analyze(ctx context.Context, invoice, packing grid.Grid, mapping config.ColumnMapping, strict bool) (*Analysis, error) {
	start := time.Now()

	reports := []*validation.Report{
		validation.ValidateGrid(invoice, validation.KindInvoice, mapping),
		validation.ValidateGrid(packing, validation.KindPackingList, mapping),
	}

	var warnings []string
	for _, r := range reports {
		for _, w := range r.Warnings() {
			a.logger.Warn().Str("kind", string(r.Kind)).Msg(w)
			warnings = append(warnings, w)
		}
		if !strict {
			for _, e := range r.Errors() {
				a.logger.Warn().Str("kind", string(r.Kind)).Msg(e)
				warnings = append(warnings, e)
			}
		}
	}
	if strict {
		if err := newInputError(reports); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cols := mapping.Resolve()
	invoiceRecords := records.BuildInvoiceRecords(invoice, cols.Invoice)
	packingRecords := records.BuildPackingListRecords(packing, cols.PackingList)

	a.logger.Debug().
		Int("invoice_records", len(invoiceRecords)).
		Int("packing_list_records", len(packingRecords)).
		Msg("Built records")

	rec, err := reconciler.Reconcile(invoiceRecords, packingRecords)
	if err != nil {
		a.logger.Error().Err(err).Msg("Reconciliation failed")
		return nil, err
	}

	descriptions := description.Extract(invoice, a.cfg.Description.Options())

	analysis := &Analysis{
		Details:      rec.Details,
		Summary:      rec.Summary,
		Totals:       rec.Totals(),
		Descriptions: descriptions,
		Warnings:     warnings,
		Stats: Stats{
			InvoiceRows:        len(grid.Normalize(invoice).Rows),
			PackingListRows:    len(grid.Normalize(packing).Rows),
			InvoiceRecords:     len(invoiceRecords),
			PackingListRecords: len(packingRecords),
			DetailRows:         len(rec.Details),
			SummaryRows:        len(rec.Summary),
			Descriptions:       len(descriptions),
			ProcessingTime:     time.Since(start),
		},
	}

	if len(invoiceRecords) != len(packingRecords) {
		msg := fmt.Sprintf("Invoice has %d lines but packing list has %d; only the first %d were paired",
			len(invoiceRecords), len(packingRecords), len(rec.Details))
		a.logger.Warn().Msg(msg)
		analysis.Warnings = append(analysis.Warnings, msg)
	}

	a.logger.Info().
		Int("lines", analysis.Stats.DetailRows).
		Int("hs_codes", analysis.Stats.SummaryRows).
		Dur("elapsed", analysis.Stats.ProcessingTime).
		Msg("Reconciliation complete")

	return analysis, nil
}

// Describe executes the description-only pipeline for an invoice.
func (a *Analyzer) Describe(ctx context.Context, path string, formats []OutputFormat) DescribeResult {
	result := DescribeResult{InputPath: path}
	log := a.logger.With().Str("invoice", path).Logger()

	g, err := a.readGrid(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read invoice: %w", err)
		return result
	}
	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	entries, err := a.DescribeGrid(g)
	if err != nil {
		log.Warn().Err(err).Msg("No descriptions found")
		result.Error = err
		return result
	}
	result.Descriptions = entries

	outputs, err := a.writeDescriptions(entries, formats)
	result.OutputFiles = outputs
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	log.Info().Int("descriptions", len(entries)).Msg("Extracted descriptions")
	result.Success = true
	return result
}

// DescribeGrid extracts the description block from a decoded invoice grid.
func (a *Analyzer) DescribeGrid(g grid.Grid) ([]types.DescriptionEntry, error) {
	return description.ExtractRequired(g, a.cfg.Description.Options())
}

// Preview decodes the file at path and builds a preview of it.
func (a *Analyzer) Preview(path string, opts grid.PreviewOptions) (grid.Preview, error) {
	g, err := a.readGrid(path)
	if err != nil {
		return grid.Preview{}, err
	}
	return grid.BuildPreview(g, opts), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ReadOptions returns the decoding options derived from the configuration.
func (a *Analyzer) ReadOptions() xlsxparser.Options {
	return xlsxparser.Options{CSV: a.cfg.CSV}
}

func (a *Analyzer) readGrid(path string) (grid.Grid, error) {
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if size, err := utils.GetFileSize(path); err == nil {
		a.logger.Debug().Str("file", path).Int64("bytes", size).Msg("Reading workbook")
	}
	return xlsxparser.ReadFile(path, a.ReadOptions())
}

// writeAnalysis writes the reconciliation outputs in each requested format.
func (a *Analyzer) writeAnalysis(analysis *Analysis, formats []OutputFormat) ([]string, error) {
	if len(formats) == 0 {
		return nil, nil
	}
	if err := a.files.EnsureDirectories(); err != nil {
		return nil, err
	}

	result := analysis.Result()
	var outputs []string
	for _, format := range formats {
		switch format {
		case FormatXLSX:
			path, err := a.files.WriteOutput(KindAnalysis, "xlsx", func(w io.Writer) error {
				return exporter.WriteWorkbook(w, result, analysis.Descriptions)
			})
			if err != nil {
				return outputs, err
			}
			outputs = append(outputs, path)
		case FormatCSV:
			path, err := a.files.WriteOutput(KindSummary, "csv", func(w io.Writer) error {
				return exporter.WriteSummaryCSV(w, analysis.Summary)
			})
			if err != nil {
				return outputs, err
			}
			outputs = append(outputs, path)

			path, err = a.files.WriteOutput(KindDetails, "csv", func(w io.Writer) error {
				return exporter.WriteDetailCSV(w, analysis.Details)
			})
			if err != nil {
				return outputs, err
			}
			outputs = append(outputs, path)
		default:
			return outputs, fmt.Errorf("unsupported output format %q", format)
		}
	}
	return outputs, nil
}

// writeDescriptions writes the description outputs in each requested format.
func (a *Analyzer) writeDescriptions(entries []types.DescriptionEntry, formats []OutputFormat) ([]string, error) {
	if len(formats) == 0 {
		return nil, nil
	}
	if err := a.files.EnsureDirectories(); err != nil {
		return nil, err
	}

	var outputs []string
	for _, format := range formats {
		var write func(io.Writer) error
		switch format {
		case FormatXLSX:
			write = func(w io.Writer) error { return exporter.WriteDescriptionWorkbook(w, entries) }
		case FormatCSV:
			write = func(w io.Writer) error { return exporter.WriteDescriptionCSV(w, entries) }
		default:
			return outputs, fmt.Errorf("unsupported output format %q", format)
		}

		path, err := a.files.WriteOutput(KindDescriptions, string(format), write)
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, path)
	}
	return outputs, nil
}
