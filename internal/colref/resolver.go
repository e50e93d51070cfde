// =============================================================================
// HS Code Reconciler - Column Reference Resolver
// =============================================================================
//
// This package converts user-entered column references into 0-based column
// indices. A reference is either a spreadsheet letter sequence ("A", "F",
// "AA"; case-insensitive) or a 1-based column number ("1", "16").
//
// LENIENCY:
//   Resolution never fails. Anything that is neither letters nor digits,
//   including the empty string, resolves to column A (index 0) so that a typo
//   in one mapping entry does not abort a whole run. Callers that want strict
//   input should validate references before resolving them (see IsValid).
//
// =============================================================================

package colref

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)
	lettersPattern = regexp.MustCompile(`^[A-Z]+$`)
)

// Resolve converts a column reference to a 0-based column index.
//
// EXAMPLES:
//   - "A"  -> 0
//   - "z"  -> 25
//   - "AA" -> 26
//   - "16" -> 15
//   - "0"  -> 0 (clamped)
//   - "?!" -> 0 (fallback)
func Resolve(ref string) int {
	col := strings.ToUpper(strings.TrimSpace(ref))

	switch {
	case digitsPattern.MatchString(col):
		n, err := strconv.Atoi(col)
		if err != nil {
			// Only reachable on overflow; treat like any other malformed input.
			return 0
		}
		return max(0, n-1)

	case lettersPattern.MatchString(col):
		return lettersToIndex(col)

	default:
		return 0
	}
}

// ResolveAll resolves every reference in refs, preserving order.
func ResolveAll(refs []string) []int {
	indices := make([]int, len(refs))
	for i, ref := range refs {
		indices[i] = Resolve(ref)
	}
	return indices
}

// IsValid reports whether ref is a well-formed letter or number reference.
// Resolve accepts anything; this is for callers that want to warn about typos.
func IsValid(ref string) bool {
	col := strings.ToUpper(strings.TrimSpace(ref))
	return digitsPattern.MatchString(col) || lettersPattern.MatchString(col)
}

// Name renders a 0-based column index as its letter name (0 -> "A").
// Negative indices render as "A".
func Name(index int) string {
	if index < 0 {
		index = 0
	}
	if name, err := excelize.ColumnNumberToName(index + 1); err == nil {
		return name
	}

	// Beyond the workbook column limit; build the name by hand.
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

// lettersToIndex converts an uppercase letter sequence to a 0-based index
// using A=1..Z=26 with weight 26 per position.
func lettersToIndex(col string) int {
	if n, err := excelize.ColumnNameToNumber(col); err == nil {
		return n - 1
	}

	// excelize rejects names past the sheet limit (XFD); the rule itself has
	// no such limit.
	result := 0
	for i := 0; i < len(col); i++ {
		result = result*26 + int(col[i]-'A'+1)
	}
	return result - 1
}
