package energy

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber formats a value for the report: large values lose their
// decimals, small ones keep three, and thousands are separated by a space.
func FormatNumber(value float64) string {
	if math.Abs(value) < 0.0005 {
		value = 0
	}

	decimals := 3
	switch abs := math.Abs(value); {
	case abs >= 1000:
		decimals = 0
	case abs >= 10:
		decimals = 1
	}

	formatted := strconv.FormatFloat(value, 'f', decimals, 64)
	if formatted == "-0" || strings.Trim(formatted, "-0.") == "" {
		formatted = strings.TrimPrefix(formatted, "-")
	}

	negative := strings.HasPrefix(formatted, "-")
	formatted = strings.TrimPrefix(formatted, "-")

	intPart, fracPart, hasFrac := strings.Cut(formatted, ".")
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
