package grid

import (
	"strings"

	"github.com/ginjaninja78/hscode-reconciler/internal/colref"
)

// PreviewOptions bounds how much of a grid a preview inspects.
type PreviewOptions struct {
	// SampleRows is the number of data rows copied into the preview.
	SampleRows int

	// MaxColumns is the number of leading columns analyzed.
	MaxColumns int

	// ScanRows is the number of data rows scanned per column.
	ScanRows int

	// SampleValues is the maximum number of sample values kept per column.
	SampleValues int
}

// DefaultPreviewOptions returns the limits used by the CLI and HTTP preview.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		SampleRows:   10,
		MaxColumns:   20,
		ScanRows:     20,
		SampleValues: 3,
	}
}

// ColumnInfo describes what a single column holds near the top of the data.
type ColumnInfo struct {
	Index        int      `json:"index"`
	Name         string   `json:"name"`
	Header       string   `json:"header"`
	HasData      bool     `json:"hasData"`
	SampleValues []string `json:"sampleValues"`
}

// Preview summarizes a grid so an operator can choose a column mapping.
type Preview struct {
	Headers      Row          `json:"headers"`
	SampleRows   Grid         `json:"sampleRows"`
	TotalRows    int          `json:"totalRows"`
	DataStartRow int          `json:"dataStartRow"`
	Columns      []ColumnInfo `json:"columns"`
}

// BuildPreview inspects the header, the first data rows and the leading
// columns of g.
func BuildPreview(g Grid, opts PreviewOptions) Preview {
	norm := Normalize(g)
	header := g.Header()

	sample := norm.Rows
	if len(sample) > opts.SampleRows {
		sample = sample[:opts.SampleRows]
	}

	preview := Preview{
		Headers:      header,
		SampleRows:   sample,
		TotalRows:    len(norm.Rows),
		DataStartRow: norm.DataStartRow,
	}

	columns := min(len(header), opts.MaxColumns)
	scan := min(len(norm.Rows), opts.ScanRows)

	for col := 0; col < columns; col++ {
		info := ColumnInfo{
			Index:        col,
			Name:         colref.Name(col),
			Header:       strings.TrimSpace(Row(header).Cell(col)),
			SampleValues: []string{},
		}

		for r := 0; r < scan; r++ {
			cell := Row(norm.Rows[r]).Cell(col)
			if cell == "" {
				continue
			}
			info.HasData = true
			if v := strings.TrimSpace(cell); v != "" && len(info.SampleValues) < opts.SampleValues {
				info.SampleValues = append(info.SampleValues, v)
			}
		}

		preview.Columns = append(preview.Columns, info)
	}

	return preview
}
