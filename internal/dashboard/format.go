package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// compactUnits are the suffixes used by compact notation, smallest first.
var compactUnits = []struct {
	scale  float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// compact scales v into the largest unit it reaches and formats the mantissa
// with format. A mantissa that rounds up to 1000 moves to the next unit, so
// 999_999 renders as 1.00M rather than 1000.00K.
func compact(v float64, format func(float64) string) string {
	abs := math.Abs(v)
	for i, u := range compactUnits {
		if abs < u.scale {
			continue
		}
		s := format(v / u.scale)
		if i > 0 && math.Abs(parseMantissa(s)) >= 1000 {
			up := compactUnits[i-1]
			return format(v/up.scale) + up.suffix
		}
		return s + u.suffix
	}
	s := format(v)
	if math.Abs(parseMantissa(s)) >= 1000 {
		last := compactUnits[len(compactUnits)-1]
		return format(v/last.scale) + last.suffix
	}
	return s
}

func parseMantissa(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// FormatCurrency formats a dollar amount in compact notation with two
// decimals ($0.85, $12.10, $120.00M, $2.67B). Amounts below one cent keep six
// decimals so micro-priced tokens stay readable.
func FormatCurrency(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return "$0.00"
	}
	if v < 0 {
		return "-" + FormatCurrency(-v)
	}
	if v < 0.01 {
		return "$" + strconv.FormatFloat(v, 'f', 6, 64)
	}
	return "$" + compact(v, func(f float64) string {
		return strconv.FormatFloat(f, 'f', 2, 64)
	})
}

// FormatNumber formats a count in compact notation with at most one decimal
// (8.9K, 12.5K, 450). Halves round away from zero.
func FormatNumber(v float64) string {
	for i, u := range compactUnits {
		if math.Abs(v) < u.scale {
			continue
		}
		// scale/10 is exact, so tenths carries no binary rounding error.
		tenths := math.Round(v / (u.scale / 10))
		if i > 0 && math.Abs(tenths) >= 10_000 {
			up := compactUnits[i-1]
			return formatTenths(math.Round(v/(up.scale/10))) + up.suffix
		}
		return formatTenths(tenths) + u.suffix
	}
	tenths := math.Round(v * 10)
	if math.Abs(tenths) >= 10_000 {
		last := compactUnits[len(compactUnits)-1]
		return formatTenths(math.Round(v/(last.scale/10))) + last.suffix
	}
	return formatTenths(tenths)
}

func formatTenths(tenths float64) string {
	s := strconv.FormatFloat(tenths/10, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return humanize.Comma(int64(n))
}

// FormatChange formats a fractional change as a signed percentage with two
// decimals. Zero counts as positive.
func FormatChange(c float64) string {
	pct := c * 100
	if c >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatPrice formats a price in full precision for the detail views:
// comma-grouped with two decimals, or six decimals below one cent.
func FormatPrice(p float64) string {
	if p > 0 && p < 0.01 {
		return "$" + strconv.FormatFloat(p, 'f', 6, 64)
	}
	cents := int64(math.Round(math.Abs(p) * 100))
	sign := ""
	if p < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}
