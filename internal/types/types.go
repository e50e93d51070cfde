// =============================================================================
// HS Code Reconciler - Shared Types
// =============================================================================
//
// This package contains the record types passed between pipeline stages. They
// live here to avoid import cycles between:
//   - records    (builds InvoiceRecord / PackingListRecord)
//   - reconciler (builds DetailRow / SummaryRow)
//   - description (builds DescriptionEntry)
//   - exporter   (renders all of them)
//
// All values are plain immutable records produced by one run.
//
// =============================================================================

package types

// =============================================================================
// INPUT RECORDS
// =============================================================================

// InvoiceRecord is one validated invoice line.
// Only built when Key is non-empty and Amount > 0.
type InvoiceRecord struct {
	// Key is the grouping identifier (the HS code).
	Key string `json:"key"`

	// Amount is the invoice line amount.
	Amount float64 `json:"amount"`

	// SourceRow is the 1-based workbook row the record was read from.
	SourceRow int `json:"sourceRow"`
}

// PackingListRecord is one validated packing-list line.
// Only built when at least one of the numeric fields is > 0.
type PackingListRecord struct {
	Cartons     float64 `json:"cartons"`
	NetWeight   float64 `json:"netWeight"`
	GrossWeight float64 `json:"grossWeight"`

	// SourceRow is the 1-based workbook row the record was read from.
	SourceRow int `json:"sourceRow"`
}

// =============================================================================
// RECONCILIATION OUTPUT
// =============================================================================

// DetailRow pairs the invoice record and packing-list record found at the same
// position in their respective record lists.
type DetailRow struct {
	// LineNumber is the 1-based position within the pairing.
	LineNumber  int     `json:"lineNumber"`
	Key         string  `json:"key"`
	Amount      float64 `json:"amount"`
	GrossWeight float64 `json:"grossWeight"`
	NetWeight   float64 `json:"netWeight"`
	Cartons     float64 `json:"cartons"`
}

// SummaryRow aggregates all detail rows that share a key.
type SummaryRow struct {
	Key              string  `json:"key"`
	TotalAmount      float64 `json:"totalAmount"`
	TotalGrossWeight float64 `json:"totalGrossWeight"`
	TotalNetWeight   float64 `json:"totalNetWeight"`
	TotalCartons     float64 `json:"totalCartons"`

	// LineCount is the number of detail rows that contributed to this key.
	LineCount int `json:"lineCount"`
}

// =============================================================================
// DESCRIPTION OUTPUT
// =============================================================================

// DescriptionEntry is one non-empty line of the description block.
type DescriptionEntry struct {
	// RowNumber is the 1-based workbook row number.
	RowNumber int    `json:"rowNumber"`
	Text      string `json:"text"`
}
