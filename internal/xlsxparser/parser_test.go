package xlsxparser

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/hscode-reconciler/internal/config"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "HS Code"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Amount"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "8471.30"))
	require.NoError(t, f.SetCellValue(sheet, "B3", 1234.5))

	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B3", "B3", style))

	_, err = f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "second"))

	require.NoError(t, f.SaveAs(path))
}

func TestReadFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.xlsx")
	writeWorkbook(t, path)

	g, err := ReadFile(path, Options{})
	require.NoError(t, err)

	require.Len(t, g, 3)
	assert.Equal(t, "HS Code", g.Cell(0, 0))
	assert.True(t, len(g[1]) == 0, "blank row stays in place")
	assert.Equal(t, "8471.30", g.Cell(2, 0))
	// Raw value, not the "1,234.50" display text.
	assert.Equal(t, "1234.5", g.Cell(2, 1))
}

func TestReadFileUsesFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.xlsx")
	writeWorkbook(t, path)

	g, err := ReadFile(path, Options{})
	require.NoError(t, err)
	for _, row := range g {
		assert.NotContains(t, row, "second")
	}
}

func TestReadCSV(t *testing.T) {
	g, err := Read(strings.NewReader("a,b\n1,2\n"), "packing.CSV", Options{CSV: config.CSVSettings{Delimiter: ","}})
	require.NoError(t, err)
	assert.Equal(t, "2", g.Cell(1, 1))
}

func TestReadXLSFallsBackToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.xlsx")
	writeWorkbook(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	g, err := Read(bytes.NewReader(buf.Bytes()), "legacy.xls", Options{})
	require.NoError(t, err)
	assert.Equal(t, "HS Code", g.Cell(0, 0))
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("not a workbook"), "broken.xlsx", Options{})
	require.Error(t, err)

	_, err = Read(strings.NewReader("not a workbook"), "broken.xls", Options{})
	require.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	cases := map[string]Format{
		"a.xlsx": FormatXLSX,
		"a.XLSM": FormatXLSX,
		"a.xls":  FormatXLS,
		"a.csv":  FormatCSV,
	}
	for name, want := range cases {
		got, err := FormatOf(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := FormatOf("notes.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
