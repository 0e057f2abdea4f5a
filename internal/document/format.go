package document

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a monetary value with thousands separators and two decimals.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	if d.IsZero() {
		return "0.00"
	}
	neg := d.IsNegative()
	whole := d.Abs().Truncate(0)
	frac := d.Abs().Sub(whole).Shift(2).IntPart()
	out := amountPrinter.Sprintf("%d", whole.IntPart()) + "." + twoDigits(frac)
	if neg {
		return "-" + out
	}
	return out
}

// FormatFloat formats a plain float the same way as FormatAmount.
func FormatFloat(v float64) string {
	return FormatAmount(decimal.NewFromFloat(v))
}

// FormatQuantity drops trailing zeros, keeping up to four decimals.
func FormatQuantity(d decimal.Decimal) string {
	d = d.Round(4)
	s := d.String()
	if !strings.Contains(s, ".") {
		return amountPrinter.Sprintf("%d", d.IntPart())
	}
	return s
}

// FormatDate renders a date as YYYY-MM-DD; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatPeriod renders an inclusive date range.
func FormatPeriod(from, to time.Time) string {
	switch {
	case from.IsZero() && to.IsZero():
		return "All dates"
	case from.IsZero():
		return "Up to " + FormatDate(to)
	case to.IsZero():
		return "From " + FormatDate(from)
	default:
		return FormatDate(from) + " to " + FormatDate(to)
	}
}

func twoDigits(v int64) string {
	if v < 10 {
		return "0" + string(rune('0'+v))
	}
	return string(rune('0'+v/10)) + string(rune('0'+v%10))
}
