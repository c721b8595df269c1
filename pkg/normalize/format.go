package normalize

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual date form of exported records.
const DateLayout = "2006-01-02T15:04"

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatAmount renders exactly four decimals, or nothing when absent.
func FormatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(4)
}

func FormatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
