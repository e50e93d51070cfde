// =============================================================================
// HS Code Reconciler - Numeric Cell Parsing
// =============================================================================
//
// Two lenient parsers turn cell text into numbers. Neither ever fails: text
// that cannot be read as a number contributes 0.
//
//   ParseNumber     - direct parse of one value ("12.5", " 7 kg" -> 7)
//   ParseMultiValue - sum of every number embedded in the cell
//                     ("12+8" -> 20, "12, 8" -> 20, "3 x 4" -> 7)
//
// Packing lists often carry more than one physical quantity in a single cell
// (for example carton sub-counts written as "12+8"). ParseMultiValue recovers
// the aggregate without rejecting the row.
//
// =============================================================================

package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var (
	// disallowedChars matches everything that is not a digit, a delimiter
	// (comma, plus, whitespace), a decimal point or a minus sign.
	disallowedChars = regexp.MustCompile(`[^\d.,+\-\s]`)

	// delimiterRun splits cleaned text into candidate numbers.
	delimiterRun = regexp.MustCompile(`[,+\s]+`)

	// numericPrefix matches the longest leading decimal number of a token.
	numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// ParseNumber parses the leading number of text, ignoring leading whitespace
// and any trailing garbage. Text without a leading number yields 0.
func ParseNumber(text string) float64 {
	v, ok := parsePrefix(strings.TrimSpace(text))
	if !ok {
		return 0
	}
	return v
}

// ParseMultiValue sums every number found in text.
//
// Full-width digits are folded to ASCII first. Characters other than digits,
// ",", "+", whitespace, "." and "-" are removed, the remainder is split on
// runs of ",", "+" and whitespace, and each piece contributes its leading
// number. Pieces with no leading number are skipped.
func ParseMultiValue(text string) float64 {
	if text == "" {
		return 0
	}

	cleaned := disallowedChars.ReplaceAllString(width.Narrow.String(text), "")

	sum := 0.0
	for _, token := range delimiterRun.Split(cleaned, -1) {
		if v, ok := parsePrefix(token); ok {
			sum += v
		}
	}
	return Clamp(sum)
}

// Clamp saturates v to the finite float64 range. Infinities become
// ±math.MaxFloat64 and NaN becomes 0, so sums of huge cell values never
// leave the range decimal arithmetic and number formatting accept.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}

// parsePrefix parses the longest numeric prefix of s.
func parsePrefix(s string) (float64, bool) {
	match := numericPrefix.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
