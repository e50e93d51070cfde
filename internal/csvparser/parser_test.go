package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
)

func TestParseKeepsRawCells(t *testing.T) {
	input := "HS,Amount\n 8471.30 ,\"1,234.50\"\n,,\nshort\n"
	g, err := Parse(strings.NewReader(input), config.CSVSettings{Delimiter: ","})
	require.NoError(t, err)

	assert.Equal(t, grid.Grid{
		{"HS", "Amount"},
		{" 8471.30 ", "1,234.50"},
		{"", "", ""},
		{"short"},
	}, g)
}

func TestParseStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFHS;Amount\n8471;10\n"
	g, err := Parse(strings.NewReader(input), config.CSVSettings{Delimiter: "semicolon"})
	require.NoError(t, err)
	assert.Equal(t, "HS", g.Cell(0, 0))
	assert.Equal(t, "10", g.Cell(1, 1))
}

func TestParseWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Desc\nCafé crème\n")
	require.NoError(t, err)

	g, err := Parse(strings.NewReader(encoded), config.CSVSettings{Delimiter: ",", Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "Café crème", g.Cell(1, 0))
}

func TestParseUnsupportedEncoding(t *testing.T) {
	_, err := Parse(strings.NewReader("a"), config.CSVSettings{Encoding: "ebcdic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\n1\t2\n"), 0644))

	g, err := ParseFile(path, config.CSVSettings{Delimiter: "tab"})
	require.NoError(t, err)
	assert.Equal(t, grid.Grid{{"a", "b"}, {"1", "2"}}, g)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"), config.CSVSettings{})
	require.Error(t, err)
}

func TestDelimiter(t *testing.T) {
	assert.Equal(t, '\t', Delimiter("TAB"))
	assert.Equal(t, '|', Delimiter("pipe"))
	assert.Equal(t, ';', Delimiter(";"))
	assert.Equal(t, ',', Delimiter(""))
	assert.Equal(t, '#', Delimiter("#"))
}
