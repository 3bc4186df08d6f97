package greenops

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat rounds f half away from zero to precision places and adds thousand
// separators. Example: FormatFloat(1234.567, 2) returns "1,234.57".
// Non-finite input renders as "N/A".
func FormatFloat(f float64, precision int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "N/A"
	}
	if precision < 0 {
		precision = 0
	}

	s := decimal.NewFromFloat(f).Round(int32(precision)).StringFixed(int32(precision))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	whole, err := decimal.NewFromString(intPart)
	if err != nil {
		return s
	}
	out := printer.Sprintf("%d", whole.IntPart())
	if hasFrac {
		out += "." + fracPart
	}
	if neg && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out
}

// FormatLarge formats large numbers with abbreviated notation.
// Example: FormatLarge(1500000000) returns "~1.5 billion".
func FormatLarge(n float64) string {
	if n >= BillionThreshold {
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	}
	if n >= LargeNumberThreshold {
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	}
	return FormatNumber(int64(math.Round(n)))
}
