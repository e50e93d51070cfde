// =============================================================================
// HS Code Reconciler - Workbook Parser
// =============================================================================
//
// This module reads an uploaded invoice or packing list into a grid.Grid.
// Only the first worksheet is read.
//
// SUPPORTED FORMATS:
//   .xlsx / .xlsm - Office Open XML, read with excelize
//   .xls          - legacy BIFF workbooks, read with xlsReader
//   .csv          - delegated to the csvparser module
//
// CELL TEXT:
//   Cells are read as their raw stored value, not the formatted display
//   text. A cell holding 1234.5 formatted as "1,234.50" is returned as
//   "1234.5", which keeps number parsing independent of the workbook's
//   number formats. Text cells are returned unchanged.
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/csvparser"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format identifies a supported input file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// SupportedExtensions lists the accepted file extensions, lower case.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}

// FormatOf returns the format implied by a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (expected one of %s)",
			filepath.Ext(name), strings.Join(SupportedExtensions, ", "))
	}
}

// Options controls how a workbook is read.
type Options struct {
	// CSV holds delimiter and encoding settings for .csv input.
	CSV config.CSVSettings
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadFile reads the workbook at path into a grid.
//
// PARAMETERS:
//   - path: The workbook path. The extension selects the reader.
//   - opts: CSV settings, used only for .csv input.
//
// RETURNS:
//   - The grid of the first worksheet.
//   - An error if the file type is unsupported or the file cannot be read.
func ReadFile(path string, opts Options) (grid.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, filepath.Base(path), opts)
}

// Read reads a workbook from r. name is only used to pick the format.
func Read(r io.Reader, name string, opts Options) (grid.Grid, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return csvparser.Parse(r, opts.CSV)
	case FormatXLS:
		return readXLS(r)
	default:
		return readXLSX(r)
	}
}

// readXLSX reads an Office Open XML workbook.
func readXLSX(r io.Reader) (grid.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	return grid.Grid(rows), nil
}

// readXLS reads a legacy BIFF workbook. Files saved with an .xls name that
// are really Office Open XML are handed to readXLSX.
func readXLS(r io.Reader) (grid.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		if _, errX := excelize.OpenReader(bytes.NewReader(data)); errX == nil {
			return readXLSX(bytes.NewReader(data))
		}
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	var g grid.Grid
	for _, row := range sheets[0].GetRows() {
		cols := row.GetCols()
		cells := make([]string, len(cols))
		for i, cell := range cols {
			cells[i] = cell.GetString()
		}
		g = append(g, trimTrailingEmpty(cells))
	}
	return g, nil
}

// trimTrailingEmpty drops trailing empty cells so .xls rows have the same
// shape excelize produces for .xlsx rows.
func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}
