package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/xtbpp/pkg/grid"
)

// OperationType is the canonical kind of a ledger operation. Raw broker
// strings without a mapping are carried through unchanged.
type OperationType string

const (
	Deposit    OperationType = "Deposit"
	Withdrawal OperationType = "Withdrawal"
	Buy        OperationType = "Buy"
	Sell       OperationType = "Sell"
	Dividend   OperationType = "Dividend"
	Taxes      OperationType = "Taxes"
	Interest   OperationType = "Interest"

	// Transfer still needs its sign resolved into Deposit or Withdrawal.
	Transfer OperationType = "transfer"
	// CloseTrade never reaches the output.
	CloseTrade OperationType = "close trade"
)

// Leg tells which side of a closed position a record comes from.
type Leg int

const (
	NoLeg Leg = iota
	OpenLeg
	CloseLeg
)

// Record is one ledger operation.
type Record struct {
	Identifier    string
	Position      string
	OperationType OperationType
	Date          time.Time
	Note          string
	TickerSymbol  string
	Amount        decimal.NullDecimal
	Shares        string
	Value         decimal.NullDecimal
	GrossAmount   string

	TransactionCurrency string
	CurrencyGrossAmount string
	CashAccount         string
	SecuritiesAccount   string

	Leg Leg

	// Extra keeps source columns that have no canonical field.
	Extra map[string]grid.Cell
}

// Clone returns a copy that shares nothing mutable with r.
func (r Record) Clone() Record {
	if r.Extra != nil {
		extra := make(map[string]grid.Cell, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
		r.Extra = extra
	}
	return r
}

// Cell returns the extra source column named label.
func (r Record) Cell(label string) grid.Cell {
	return r.Extra[label]
}
