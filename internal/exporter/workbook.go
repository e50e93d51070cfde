// =============================================================================
// HS Code Reconciler - Workbook Exporter
// =============================================================================
//
// This module renders reconciliation results as .xlsx workbooks.
//
// RECONCILIATION WORKBOOK LAYOUT:
//
//   Sheet "Summary by HS Code"
//     | HS Code | Total Invoice Amount | Total Gross Weight | Total Net Weight | Total Cartons | Line Count |
//     | ...one row per HS code, sorted by code...                                                        |
//     (5 blank rows, then, only when descriptions were extracted)
//     | Description Data |
//     | Row Number | Description |
//     | 12         | Widget A    |
//
//   Sheet "Line by Line Details"
//     | Line Number | HS Code | Invoice Amount | Gross Weight | Net Weight | Cartons |
//
// DESCRIPTION WORKBOOK LAYOUT:
//
//   Sheet "Descriptions"
//     | Row Number | Description |
//
// Amounts and weights are written as numbers styled "0.00", so the values
// stay numeric in the spreadsheet.
//
// =============================================================================

package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/hscode-reconciler/internal/reconciler"
	"github.com/ginjaninja78/hscode-reconciler/internal/types"
)

// Sheet names.
const (
	SheetSummary      = "Summary by HS Code"
	SheetDetails      = "Line by Line Details"
	SheetDescriptions = "Descriptions"
)

// DescriptionGap is the number of blank rows between the summary table and
// the description block on the summary sheet.
const DescriptionGap = 5

// numFmtTwoDecimals is the built-in excelize number format "0.00".
const numFmtTwoDecimals = 2

// Column headers.
var (
	SummaryHeaders     = []string{"HS Code", "Total Invoice Amount", "Total Gross Weight", "Total Net Weight", "Total Cartons", "Line Count"}
	DetailHeaders      = []string{"Line Number", "HS Code", "Invoice Amount", "Gross Weight", "Net Weight", "Cartons"}
	DescriptionHeaders = []string{"Row Number", "Description"}
)

// =============================================================================
// WORKBOOK WRITERS
// =============================================================================

// WriteWorkbook writes the reconciliation workbook to w.
//
// PARAMETERS:
//   - w: Destination for the .xlsx bytes.
//   - result: The reconciliation result.
//   - descriptions: Optional description entries appended to the summary
//     sheet. Pass nil to omit the block.
//
// RETURNS:
//   - An error if the workbook cannot be built or written.
func WriteWorkbook(w io.Writer, result *reconciler.Result, descriptions []types.DescriptionEntry) error {
	if result == nil {
		return fmt.Errorf("no reconciliation result to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	numStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	// Summary sheet replaces the default sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	sw := sheetWriter{f: f, sheet: SheetSummary, headerStyle: headerStyle}
	if err := sw.header(SummaryHeaders); err != nil {
		return err
	}
	for _, s := range result.Summary {
		if err := sw.row(s.Key, s.TotalAmount, s.TotalGrossWeight, s.TotalNetWeight, s.TotalCartons, s.LineCount); err != nil {
			return err
		}
	}
	if err := sw.style("B", "E", 2, sw.next-1, numStyle); err != nil {
		return err
	}

	if len(descriptions) > 0 {
		sw.next += DescriptionGap
		if err := sw.header([]string{"Description Data"}); err != nil {
			return err
		}
		if err := sw.header(DescriptionHeaders); err != nil {
			return err
		}
		for _, d := range descriptions {
			if err := sw.row(d.RowNumber, d.Text); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "F", 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	// Detail sheet.
	if _, err := f.NewSheet(SheetDetails); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	dw := sheetWriter{f: f, sheet: SheetDetails, headerStyle: headerStyle}
	if err := dw.header(DetailHeaders); err != nil {
		return err
	}
	for _, d := range result.Details {
		if err := dw.row(d.LineNumber, d.Key, d.Amount, d.GrossWeight, d.NetWeight, d.Cartons); err != nil {
			return err
		}
	}
	if err := dw.style("C", "F", 2, dw.next-1, numStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetDetails, "A", "F", 16); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteDescriptionWorkbook writes a single-sheet workbook of description
// entries to w.
func WriteDescriptionWorkbook(w io.Writer, entries []types.DescriptionEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetDescriptions); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	sw := sheetWriter{f: f, sheet: SheetDescriptions, headerStyle: headerStyle}
	if err := sw.header(DescriptionHeaders); err != nil {
		return err
	}
	for _, e := range entries {
		if err := sw.row(e.RowNumber, e.Text); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetDescriptions, "B", "B", 60); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// =============================================================================
// SHEET WRITER
// =============================================================================

// sheetWriter appends rows to one sheet. next is the 1-based row number the
// next call writes to.
type sheetWriter struct {
	f           *excelize.File
	sheet       string
	headerStyle int
	next        int
}

func (s *sheetWriter) cell(col int) string {
	if s.next == 0 {
		s.next = 1
	}
	name, _ := excelize.CoordinatesToCellName(col, s.next)
	return name
}

func (s *sheetWriter) row(values ...any) error {
	start := s.cell(1)
	if err := s.f.SetSheetRow(s.sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", s.next, s.sheet, err)
	}
	s.next++
	return nil
}

func (s *sheetWriter) header(titles []string) error {
	start := s.cell(1)
	end := s.cell(len(titles))
	if err := s.f.SetSheetRow(s.sheet, start, &titles); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", s.sheet, err)
	}
	if err := s.f.SetCellStyle(s.sheet, start, end, s.headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", s.sheet, err)
	}
	s.next++
	return nil
}

// style applies styleID to columns fromCol..toCol over rows fromRow..toRow.
// Empty ranges are ignored.
func (s *sheetWriter) style(fromCol, toCol string, fromRow, toRow, styleID int) error {
	if toRow < fromRow {
		return nil
	}
	start := fmt.Sprintf("%s%d", fromCol, fromRow)
	end := fmt.Sprintf("%s%d", toCol, toRow)
	if err := s.f.SetCellStyle(s.sheet, start, end, styleID); err != nil {
		return fmt.Errorf("failed to style %s:%s of %s: %w", start, end, s.sheet, err)
	}
	return nil
}
