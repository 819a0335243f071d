package greenops

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(11700000) returns "11,700,000".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats f rounded to precision decimals with thousand separators.
// Example: FormatFloat(1234.567, 2) returns "1,234.57".
func FormatFloat(f float64, precision int) string {
	if precision <= 0 {
		return FormatNumber(int64(math.Round(f)))
	}

	const base = 10
	multiplier := math.Pow(base, float64(precision))
	rounded := math.Round(f*multiplier) / multiplier

	formatted := strconv.FormatFloat(math.Abs(rounded), 'f', precision, 64)
	intPart, fracPart, _ := strings.Cut(formatted, ".")

	n, err := strconv.ParseInt(intPart, base, 64)
	if err != nil {
		return strconv.FormatFloat(rounded, 'f', precision, 64)
	}

	sign := ""
	if rounded < 0 {
		sign = "-"
	}
	return sign + printer.Sprintf("%d", n) + "." + fracPart
}

// FormatSigned formats a whole-unit delta with an explicit sign for positive
// values. Example: FormatSigned(13) returns "+13".
func FormatSigned(n int64) string {
	if n > 0 {
		return "+" + FormatNumber(n)
	}
	return FormatNumber(n)
}

// FormatLarge formats large magnitudes with abbreviated notation:
// "~X.X million" at or above LargeNumberThreshold and "~X.X billion" at or
// above BillionThreshold. Smaller values use comma-separated integers.
func FormatLarge(n float64) string {
	sign := ""
	if n < 0 {
		sign = "-"
	}
	abs := math.Abs(n)

	if abs >= BillionThreshold {
		return fmt.Sprintf("~%s%.1f billion", sign, abs/BillionThreshold)
	}
	if abs >= LargeNumberThreshold {
		return fmt.Sprintf("~%s%.1f million", sign, abs/LargeNumberThreshold)
	}
	return FormatNumber(int64(math.Round(n)))
}

// FormatTonnes renders a tonne quantity, abbreviating large values.
func FormatTonnes(t float64) string {
	return FormatLarge(t) + " tCO2"
}
