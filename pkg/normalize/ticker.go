package normalize

import (
	"strings"

	"github.com/samber/lo"

	"github.com/yurifrl/xtbpp/pkg/models"
)

// StripTickerSuffix drops the exchange suffix: "AAPL.US" becomes "AAPL".
func StripTickerSuffix(ticker string) string {
	if i := strings.Index(ticker, "."); i >= 0 {
		ticker = ticker[:i]
	}
	return strings.TrimSpace(ticker)
}

func StripTickers(records []models.Record) []models.Record {
	return lo.Map(records, func(r models.Record, _ int) models.Record {
		r = r.Clone()
		r.TickerSymbol = StripTickerSuffix(r.TickerSymbol)
		return r
	})
}
