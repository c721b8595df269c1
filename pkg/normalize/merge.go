package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/xtbpp/pkg/models"
)

// SplitLegs splits closed positions into an opening and a closing leg each.
// Closing legs are always sells.
func SplitLegs(records []models.Record) (opens, closes []models.Record) {
	opens = make([]models.Record, 0, len(records))
	closes = make([]models.Record, 0, len(records))
	for _, r := range records {
		open := models.Record{
			Position:      r.Position,
			TickerSymbol:  r.TickerSymbol,
			OperationType: r.OperationType,
			Shares:        r.Shares,
			Date:          r.Date,
			Value:         r.Value,
			GrossAmount:   r.GrossAmount,
			Note:          r.Note,
			Leg:           models.OpenLeg,
		}

		// Unparsable close cells leave the leg without a date or price.
		closedAt, _ := r.Cell(LabelCloseTime).Timestamp()
		price, _ := r.Cell(LabelClosePrice).Decimal()
		closing := open
		closing.OperationType = models.Sell
		closing.Date = closedAt
		closing.Value = price
		closing.GrossAmount = strings.TrimSpace(r.Cell(LabelSaleValue).String())
		closing.Leg = models.CloseLeg

		opens = append(opens, open)
		closes = append(closes, closing)
	}
	return opens, closes
}

// MergeClosed orders the closed positions ledger: every opening leg, then
// every closing leg, then CFD cash flows. Only legs are multiplied out.
func MergeClosed(opens, closes, flows []models.Record) []models.Record {
	legs := make([]models.Record, 0, len(opens)+len(closes))
	legs = append(legs, opens...)
	legs = append(legs, closes...)

	out := MultiplyValue(legs)
	for _, f := range flows {
		out = append(out, f.Clone())
	}
	return out
}

// MultiplyValue replaces a per-share Value with Shares × Value. Value becomes
// absent when Shares is not numeric.
func MultiplyValue(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r = r.Clone()
		shares, err := parseNumber(r.Shares)
		if err != nil || !r.Value.Valid {
			r.Value = decimal.NullDecimal{}
		} else {
			r.Value = decimal.NewNullDecimal(shares.Mul(r.Value.Decimal))
		}
		out[i] = r
	}
	return out
}

func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return decimal.NewFromString(strings.ReplaceAll(s, " ", ""))
}
