package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/xtbpp/pkg/grid"
	"github.com/yurifrl/xtbpp/pkg/models"
)

const (
	NoteProfitCFD = "Profit CFD"
	NoteLossCFD   = "Loss CFD"
)

var cfdPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// IsCFD reports whether ticker is a bare alphanumeric CFD symbol such as
// "US30". Exchange listed tickers carry a suffix ("AAPL.US").
func IsCFD(ticker string) bool {
	return cfdPattern.MatchString(strings.TrimSpace(ticker))
}

// PartitionCFD splits records into CFD and non-CFD subsets, preserving order.
func PartitionCFD(records []models.Record) (cfd, other []models.Record) {
	byTicker := func(r models.Record, _ int) bool { return IsCFD(r.TickerSymbol) }
	return lo.Filter(records, byTicker), lo.Reject(records, byTicker)
}

// ResolveTransfers turns transfers into deposits or withdrawals by the sign
// of Amount. Zero or absent amounts stay transfers.
func ResolveTransfers(records []models.Record) []models.Record {
	return lo.Map(records, func(r models.Record, _ int) models.Record {
		r = r.Clone()
		if r.OperationType != models.Transfer || !r.Amount.Valid {
			return r
		}
		switch r.Amount.Decimal.Sign() {
		case 1:
			r.OperationType = models.Deposit
		case -1:
			r.OperationType = models.Withdrawal
		}
		return r
	})
}

// ResolveCloseTrades turns CFD close trades into profit or loss cash flows
// and drops every other close trade.
func ResolveCloseTrades(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		r = r.Clone()
		if r.OperationType != models.CloseTrade {
			out = append(out, r)
			continue
		}
		if !IsCFD(r.TickerSymbol) {
			continue
		}
		if nonNegative(r.Amount) {
			r.OperationType = models.Deposit
			r.Note = NoteProfitCFD
		} else {
			r.OperationType = models.Withdrawal
			r.Note = NoteLossCFD
		}
		out = append(out, r)
	}
	return out
}

// CFDCashFlows reduces closed CFD positions to their realized gross P/L.
func CFDCashFlows(records []models.Record) []models.Record {
	return lo.Map(records, func(r models.Record, _ int) models.Record {
		pl, _ := r.Cell(LabelGrossPL).Decimal()
		closeCell := r.Cell(LabelCloseTime)
		closed, err := closeCell.Timestamp()

		when := strings.TrimSpace(closeCell.String())
		if err == nil && !closed.IsZero() {
			when = closed.Format(grid.TimeLayout)
		}
		ticker := strings.TrimSpace(r.TickerSymbol)

		flow := models.Record{
			Position: r.Position,
			Date:     closed,
			Value:    pl,
		}
		if nonNegative(pl) {
			flow.OperationType = models.Deposit
			flow.Note = fmt.Sprintf("%s on: %s on %s", NoteProfitCFD, ticker, when)
		} else {
			flow.OperationType = models.Withdrawal
			flow.Note = fmt.Sprintf("%s on: %s on %s", NoteLossCFD, ticker, when)
		}
		return flow
	})
}

// nonNegative is false for absent values.
func nonNegative(d decimal.NullDecimal) bool {
	return d.Valid && d.Decimal.Sign() >= 0
}
