// =============================================================================
// HS Code Reconciler - Input Validation
// =============================================================================
//
// This module checks uploaded workbooks before they are reconciled, so that
// an operator sees "No HS codes found in Column F" instead of an empty
// report.
//
// VALIDATION LEVELS:
//   1. File: the extension must be a supported workbook or CSV type
//   2. Structure: at least a header row and one data row
//   3. Mapping: the mapped columns must hold data within the first
//      SampleRows data rows
//
// ERROR HANDLING:
//   - Issues are collected, not returned one at a time
//   - Each issue is an error (the file cannot be reconciled) or a warning
//     (the file can be reconciled but some totals will be zero)
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/hscode-reconciler/internal/colref"
	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/extract"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
	"github.com/ginjaninja78/hscode-reconciler/internal/xlsxparser"
)

// SampleRows is how many data rows the mapping check inspects.
const SampleRows = 20

// =============================================================================
// VALIDATION ISSUE TYPES
// =============================================================================

// Severity indicates whether an issue blocks reconciliation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind is the role a file plays in a reconciliation.
type Kind string

const (
	KindInvoice     Kind = "invoice"
	KindPackingList Kind = "packing_list"
)

// Issue is a single validation finding.
type Issue struct {
	Severity Severity `json:"severity"`

	// Field is the mapping field the issue concerns, if any.
	Field string `json:"field,omitempty"`

	Message string `json:"message"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(i.Severity)), i.Message)
}

// =============================================================================
// VALIDATION REPORT
// =============================================================================

// Report collects the issues found in one file.
type Report struct {
	File   string  `json:"file,omitempty"`
	Kind   Kind    `json:"kind"`
	Issues []Issue `json:"issues"`
}

// IsValid is true if there are no error-level issues.
func (r *Report) IsValid() bool {
	return r.ErrorCount() == 0
}

// ErrorCount is the number of error-level issues.
func (r *Report) ErrorCount() int {
	return len(r.Errors())
}

// Errors returns the messages of error-level issues.
func (r *Report) Errors() []string {
	return r.messages(SeverityError)
}

// Warnings returns the messages of warning-level issues.
func (r *Report) Warnings() []string {
	return r.messages(SeverityWarning)
}

func (r *Report) messages(sev Severity) []string {
	var out []string
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue.Message)
		}
	}
	return out
}

func (r *Report) addError(field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) addWarning(field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Summary renders the report as a single line.
func (r *Report) Summary() string {
	if len(r.Issues) == 0 {
		return fmt.Sprintf("%s: OK", r.label())
	}
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = issue.Error()
	}
	return fmt.Sprintf("%s: %s", r.label(), strings.Join(parts, "; "))
}

func (r *Report) label() string {
	if r.File != "" {
		return r.File
	}
	return string(r.Kind)
}

// =============================================================================
// VALIDATORS
// =============================================================================

// ValidateExtension checks that name has a supported file extension.
func ValidateExtension(name string) error {
	_, err := xlsxparser.FormatOf(name)
	return err
}

// ValidateFile reads the file at path and validates it.
// Read failures are reported as issues, not returned.
func ValidateFile(path string, kind Kind, mapping config.ColumnMapping, opts xlsxparser.Options) *Report {
	report := &Report{File: path, Kind: kind}

	if err := ValidateExtension(path); err != nil {
		report.addError("", "%s", err.Error())
		return report
	}

	g, err := xlsxparser.ReadFile(path, opts)
	if err != nil {
		report.addError("", "Failed to parse file: %v", err)
		return report
	}

	validateGrid(report, g, kind, mapping)
	return report
}

// ValidateGrid validates an already decoded grid.
//
// PARAMETERS:
//   - g: The decoded first worksheet.
//   - kind: Whether g is an invoice or a packing list.
//   - mapping: The raw column mapping; only the fields for kind are checked.
//
// RETURNS:
//   - A report. A missing key column is an error for invoices; every other
//     missing field is a warning.
func ValidateGrid(g grid.Grid, kind Kind, mapping config.ColumnMapping) *Report {
	report := &Report{Kind: kind}
	validateGrid(report, g, kind, mapping)
	return report
}

func validateGrid(report *Report, g grid.Grid, kind Kind, mapping config.ColumnMapping) {
	for _, ref := range mapping.InvalidReferences() {
		report.addWarning("mapping", "Invalid column reference %s, column A will be used", ref)
	}

	if len(g) < 2 {
		report.addError("", "File must contain at least 2 rows (header + data)")
		return
	}

	rows := grid.Normalize(g).Rows
	if len(rows) > SampleRows {
		rows = rows[:SampleRows]
	}

	resolved := mapping.Resolve()

	switch kind {
	case KindInvoice:
		cols := resolved.Invoice
		if countPresent(rows, cols.Key) == 0 {
			report.addError("hs_code", "No HS codes found in %s", describeColumns(cols.Key))
		}
		if countPresent(rows, cols.Amount) == 0 {
			report.addWarning("amount", "No amounts found in %s", describeColumns(cols.Amount))
		}
	case KindPackingList:
		cols := resolved.PackingList
		weights := append(append([]int{}, cols.NetWeight...), cols.GrossWeight...)
		if countPresent(rows, weights) == 0 {
			report.addWarning("weight", "No weight data found in %s", describeColumns(weights))
		}
		if countPresent(rows, cols.Cartons) == 0 {
			report.addWarning("cartons", "No carton data found in %s", describeColumns(cols.Cartons))
		}
	default:
		report.addError("", "Unknown file kind %q", kind)
	}
}

// countPresent counts rows with a non-empty cell in any of cols.
func countPresent(rows grid.Grid, cols []int) int {
	count := 0
	for _, row := range rows {
		if extract.Fallback(row, cols) != "" {
			count++
		}
	}
	return count
}

// describeColumns renders column indices as "Column F" or "Columns O or P".
func describeColumns(cols []int) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = colref.Name(c)
	}
	if len(names) == 1 {
		return "Column " + names[0]
	}
	return "Columns " + strings.Join(names, " or ")
}
