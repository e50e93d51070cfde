// =============================================================================
// HS Code Reconciler - CSV Parser Module
// =============================================================================
//
// This module reads CSV exports of invoices and packing lists into a
// grid.Grid, the same shape the workbook reader produces. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Legacy encodings (Windows-1252, ISO-8859-1, UTF-16)
//   - A leading UTF-8 byte order mark
//   - Rows with varying field counts
//
// Cell text is kept exactly as written. Blank-row detection and number
// parsing happen downstream and depend on the raw text.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a CSV file into a grid.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - The parsed grid, one row per CSV record.
//   - An error if the file cannot be opened or parsed.
func ParseFile(filePath string, settings config.CSVSettings) (grid.Grid, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file, settings)
}

// Parse reads CSV data from r into a grid.
//
// PARSING PROCESS:
//  1. Decode the input to UTF-8 using the configured encoding
//  2. Drop a leading byte order mark
//  3. Read every record, allowing ragged rows and lazy quotes
func Parse(r io.Reader, settings config.CSVSettings) (grid.Grid, error) {
	dec, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := bufio.NewReader(transform.NewReader(r, dec.NewDecoder()))
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return grid.Grid(rows), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Exports from different systems disagree on trailing columns.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false
}

// Delimiter maps a configured delimiter name to its rune.
// Unknown or empty values fall back to a comma.
func Delimiter(name string) rune {
	switch strings.ToLower(name) {
	case "\\t", "\t", "tab":
		return '\t'
	case "|", "pipe":
		return '|'
	case ";", "semicolon":
		return ';'
	case "", ",", "comma":
		return ','
	default:
		return []rune(name)[0]
	}
}

// decoderFor returns the text encoding for a configured name.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return encoding.Nop, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}
