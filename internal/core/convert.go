package core

// convert.go provides explicit numeric parsing for cell values.
//
// Cells are always strings. Prices and quantities are parsed here and the
// caller gets an ok flag instead of a panic or a silent zero:
//   - Surrounding whitespace is ignored
//   - Excel formula wrappers (="12") are unwrapped
//   - Currency symbols and thousands separators are dropped
//   - Accounting negatives "(12.50)" become -12.50

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain decimal after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// currencyReplacer strips symbols sellers commonly paste into price cells.
var currencyReplacer = strings.NewReplacer(
	"$", "",
	"€", "", // Euro
	"£", "", // Pound
	",", "",
)

// parseNumber parses a cell as a finite number.
func parseNumber(raw string) (float64, bool) {
	s := unwrapFormula(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimSpace(currencyReplacer.Replace(s))
	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// unwrapFormula removes the ="..." wrapper Excel adds to keep leading zeros.
func unwrapFormula(s string) string {
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		return s[2 : len(s)-1]
	}
	return s
}

// formatNumber renders a number without trailing zeros: 50, 10.99, 0.5.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
