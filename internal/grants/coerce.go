package grants

// coerce.go converts raw spreadsheet cells into typed values.
//
// Cells arrive as the formatted text the spreadsheet displays, so they carry
// currency symbols, thousands separators and percent signs. Every function
// here is pure and never panics on malformed input.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a plain number after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// nonMonetaryChars matches everything ToMonetary discards.
var nonMonetaryChars = regexp.MustCompile(`[^0-9.\-]`)

// ToMonetary salvages a monetary amount from a cell.
//
// Every character other than digits, '-' and '.' is removed before parsing,
// so "$1,234.56" yields 1234.56. Empty input returns (nil, true). Non-empty
// input whose residue does not parse ("n/a", "1.2.3") returns a pointer to 0
// with ok=false so callers can warn about it. The amount stays exact until it
// is written to storage.
func ToMonetary(raw string) (value *decimal.Decimal, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	residue := nonMonetaryChars.ReplaceAllString(raw, "")
	if residue == "-" {
		// Accounting formats render zero as "$ -".
		zero := decimal.Zero
		return &zero, true
	}
	if residue == "" {
		zero := decimal.Zero
		return &zero, false
	}
	d, err := decimal.NewFromString(residue)
	if err != nil {
		zero := decimal.Zero
		return &zero, false
	}
	return &d, true
}

// ToPercentage trims whitespace and a trailing '%' and keeps the numeric text
// as-is ("12%" -> "12"). It is not converted to a fraction. Empty input
// returns nil.
func ToPercentage(raw string) *string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return nil
	}
	return &s
}

// ParseLineNumber parses a BG line cell. Thousands separators are removed
// first; anything that is not then a plain number is rejected.
func ParseLineNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToIdentifier parses an external integer reference such as a position id.
// Empty input returns (nil, true); unparseable input returns (nil, false).
func ToIdentifier(raw string) (*int64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return nil, true
	}
	// Spreadsheets often render integer ids as "12.0".
	if f, ok := ParseLineNumber(s); ok && f == float64(int64(f)) {
		id := int64(f)
		return &id, true
	}
	return nil, false
}

// ToText trims a free-text cell, returning nil when empty.
func ToText(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// FormatLineNumber renders a BG line without a trailing ".0".
func FormatLineNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
