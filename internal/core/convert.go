package core

// convert.go provides the cell coercions used by Normalize.
//
// These functions handle the messy reality of exported spreadsheets:
//   - Surrounding whitespace
//   - Excel formula prefixes (="value")
//   - Stray surrounding quotes
//   - Integral years written as decimals ("2020.0")
//
// Numeric coercions return NaN with ok=false for empty or invalid input so a
// bad cell degrades into a missing value instead of failing the row.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Year bounds accepted by ToYear. Anything outside is treated as a bad cell.
const (
	minYear = -9999
	maxYear = 9999
)

// ToNumber converts a cell to float64.
// Returns NaN and false if the cell is empty or not a plain decimal number.
func ToNumber(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" || !numericRegex.MatchString(s) {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

// ToYear converts a cell to an integral year.
// "2020" and "2020.0" are accepted; "2020.5" and "twenty" are not.
func ToYear(s string) (int, bool) {
	v, ok := ToNumber(s)
	if !ok || v != math.Trunc(v) || v < minYear || v > maxYear {
		return 0, false
	}
	return int(v), true
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// cleanHeader normalizes a header cell: BOM and surrounding artifacts removed.
func cleanHeader(s string) string {
	return CleanCell(strings.TrimPrefix(s, "\ufeff"))
}

// isBlank reports whether every cell in the record is whitespace.
func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// roundTo rounds v to the given number of decimal places. Values too large
// to scale are returned unchanged; they have no fractional part anyway.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	scaled := v * p
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) {
		return v
	}
	return math.Round(scaled) / p
}
