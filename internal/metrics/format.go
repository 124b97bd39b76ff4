package metrics

import (
	"fmt"
	"math"
	"strconv"
)

// NotAvailable is rendered for absent readings.
const NotAvailable = "N/A"

// Format renders v the way the definition's kind prescribes.
func Format(def Definition, v Value) string {
	return formatKind(def.Kind, def.Decimals, v)
}

func formatKind(kind Kind, decimals int, v Value) string {
	f, ok := v.Float()
	if !ok {
		return NotAvailable
	}
	switch kind {
	case KindRate:
		return FormatPercent(f)
	case KindIndex:
		return FormatDecimal(f, decimals)
	case KindDuration:
		return FormatDuration(f)
	default:
		if decimals == 0 {
			return FormatInteger(f)
		}
		return FormatDecimal(f, decimals)
	}
}

// FormatPercent renders a share. Values in [0,1] are scaled to percent;
// values in (1,100.5] are taken to be percentages already.
func FormatPercent(f float64) string {
	if !finite(f) {
		return NotAvailable
	}
	if f >= 0 && f <= 1 {
		f *= 100
	}
	return strconv.FormatFloat(f, 'f', 1, 64) + "%"
}

// FormatDecimal renders f with a fixed number of decimals.
func FormatDecimal(f float64, decimals int) string {
	if !finite(f) {
		return NotAvailable
	}
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// FormatInteger truncates f toward zero.
func FormatInteger(f float64) string {
	if !finite(f) {
		return NotAvailable
	}
	return strconv.FormatInt(int64(math.Trunc(f)), 10)
}

// FormatDuration renders seconds as "M min S sec".
func FormatDuration(seconds float64) string {
	if !finite(seconds) || seconds < 0 {
		return NotAvailable
	}
	if seconds == 0 {
		return "0 sec"
	}
	if seconds < 0.5 {
		return "<1 sec"
	}

	minutes := int64(math.Floor(seconds / 60))
	rest := int64(math.Round(math.Mod(seconds, 60)))
	if rest == 60 {
		minutes++
		rest = 0
	}
	if minutes == 0 {
		return fmt.Sprintf("%d sec", rest)
	}
	return fmt.Sprintf("%d min %d sec", minutes, rest)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
