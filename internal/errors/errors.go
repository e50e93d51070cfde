// =============================================================================
// HS Code Reconciler - Error Types
// =============================================================================
//
// This package defines the error taxonomy shared by every stage of the
// reconciliation pipeline.
//
// ERROR CLASSES:
//   - no-data: a stage produced no usable rows (reported to the caller)
//   - malformed column reference: never raised, resolved to column A
//   - unparseable number: never raised, parsed as 0
//
// Only the no-data class is represented here. Callers check for it with
// errors.Is(err, ErrNoData) or IsNoData(err) and read the failing stage with
// StageOf(err).
//
// =============================================================================

package errors

import (
	"errors"
	"fmt"
)

// New is an alias for the standard library errors.New.
var New = errors.New

// ErrNoData indicates that a pipeline stage produced no usable rows.
var ErrNoData = errors.New("no data")

// Stage identifies which part of the pipeline produced no usable rows.
type Stage string

const (
	// StageInvoice means no invoice rows matched the column mapping.
	StageInvoice Stage = "invoice"

	// StagePackingList means no packing-list rows matched the column mapping.
	StagePackingList Stage = "packing_list"

	// StagePairing means the two tables share no positionally-overlapping keys.
	StagePairing Stage = "pairing"

	// StageDescription means the description block was empty.
	StageDescription Stage = "description"
)

// NoDataError reports the stage that produced no usable rows.
type NoDataError struct {
	Stage Stage

	// Column and Row locate the description block (column name, 1-based
	// row). They are only set for the description stage.
	Column string
	Row    int
}

// Error implements the error interface.
//
// The messages point the operator at the column mapping rather than at the
// data, since the mapping is what they can change.
func (e *NoDataError) Error() string {
	switch e.Stage {
	case StageInvoice:
		return "no valid invoice data found: check the invoice column mapping and make sure the selected columns contain HS codes and positive amounts"
	case StagePackingList:
		return "no valid packing list data found: check the packing list column mapping and make sure the selected columns contain cartons or weights"
	case StagePairing:
		return "no positionally-overlapping HS codes between the invoice and packing list tables"
	case StageDescription:
		column, row := e.Column, e.Row
		if column == "" {
			column = "A"
		}
		if row <= 0 {
			row = 12
		}
		return fmt.Sprintf("no description data found in column %s starting from row %d", column, row)
	default:
		return fmt.Sprintf("no data produced by stage %s", e.Stage)
	}
}

// Is implements errors.Is support.
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// NewNoDataError creates a new NoDataError for the given stage.
func NewNoDataError(stage Stage) *NoDataError {
	return &NoDataError{Stage: stage}
}

// NewDescriptionNoDataError creates a description-stage NoDataError for a
// block scanned from column starting at the 1-based row.
func NewDescriptionNoDataError(column string, row int) *NoDataError {
	return &NoDataError{Stage: StageDescription, Column: column, Row: row}
}

// IsNoData reports whether err is, or wraps, a no-data failure.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// StageOf returns the stage of a wrapped NoDataError, or "" if err is not one.
func StageOf(err error) Stage {
	var nd *NoDataError
	if errors.As(err, &nd) {
		return nd.Stage
	}
	return ""
}
