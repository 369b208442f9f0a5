package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericPattern matches Brazilian-format numbers: optional dot-separated
// thousand groups and at most one decimal comma ("1.234,56", "0,66", "12").
var numericPattern = regexp.MustCompile(`^\d+(?:\.\d{3})*(?:,\d+)?$`)

// IsNumericToken reports whether s has the shape of a report number.
func IsNumericToken(s string) bool {
	return numericPattern.MatchString(s)
}

// ParseNumber converts a report number to a decimal and returns the number of
// digits after the decimal comma. ok is false for anything that is not a
// well-formed number; it never panics.
func ParseNumber(s string) (value decimal.Decimal, scale int, ok bool) {
	if !IsNumericToken(s) {
		return decimal.Zero, 0, false
	}

	normalized := strings.ReplaceAll(s, ".", "")
	if i := strings.LastIndexByte(normalized, ','); i >= 0 {
		scale = len(normalized) - i - 1
		normalized = normalized[:i] + "." + normalized[i+1:]
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, 0, false
	}
	return d, scale, true
}

// CountNumericTokens counts the tokens of line shaped like numbers.
func CountNumericTokens(line string) int {
	count := 0
	for _, f := range strings.Fields(line) {
		if IsNumericToken(f) {
			count++
		}
	}
	return count
}
