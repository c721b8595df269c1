// Package normalize turns raw report rows into ledger records. One
// Normalizer serves every report type; a Schema describes what differs.
package normalize

import "github.com/yurifrl/xtbpp/pkg/grid"

// Canonical field names used by rename tables.
const (
	FieldIdentifier  = "Identifier"
	FieldPosition    = "Position"
	FieldType        = "OperationType"
	FieldDate        = "Date"
	FieldNote        = "Note"
	FieldTicker      = "TickerSymbol"
	FieldAmount      = "Amount"
	FieldShares      = "Shares"
	FieldValue       = "Value"
	FieldGrossAmount = "GrossAmount"
)

// Source labels of the closed positions report that stay in Record.Extra.
const (
	LabelCloseTime  = "Close time"
	LabelClosePrice = "Close price"
	LabelSaleValue  = "Sale value"
	LabelGrossPL    = "Gross P/L"
)

// Schema describes one report type.
type Schema struct {
	Name  string
	Sheet int
	// Columns are the header labels the table is located by.
	Columns []string
	// Required labels must be present in the located header.
	Required []string
	// Rename maps a source label to a canonical field. Unmapped labels are
	// kept in Record.Extra.
	Rename map[string]string

	// ResolveCashFlows resolves transfer signs and CFD close trades.
	ResolveCashFlows bool
	// ExtractNotes reads shares and price out of trade comments.
	ExtractNotes bool
	// ValueFromAmount fills an empty Value with Amount.
	ValueFromAmount bool
	// MultiplyValue turns a per-share Value into Shares × Value.
	MultiplyValue bool
	// MergeLegs splits closed positions into open and close legs and turns
	// CFD positions into cash flows.
	MergeLegs bool
}

// CashHistory is the cash operations report.
var CashHistory = Schema{
	Name:     "cash",
	Sheet:    grid.SheetCash,
	Columns:  []string{"ID", "Type", "Time", "Comment", "Symbol", "Amount"},
	Required: []string{"Type", "Time", "Amount"},
	Rename: map[string]string{
		"ID":      FieldIdentifier,
		"Type":    FieldType,
		"Time":    FieldDate,
		"Comment": FieldNote,
		"Symbol":  FieldTicker,
		"Amount":  FieldAmount,
		"Volume":  FieldShares,
	},
	ResolveCashFlows: true,
	ExtractNotes:     true,
	ValueFromAmount:  true,
}

// OpenPositions is the open positions report.
var OpenPositions = Schema{
	Name:  "open",
	Sheet: grid.SheetOpen,
	Columns: []string{
		"Position", "Symbol", "Type", "Volume", "Open time", "Open price", "Market price",
		"Purchase value", "SL", "TP", "Margin", "Commission", "Swap", "Rollover", "Gross P/L", "Comment",
	},
	Required: []string{"Symbol", "Volume", "Open time", "Open price"},
	Rename: map[string]string{
		"Position":       FieldPosition,
		"Symbol":         FieldTicker,
		"Type":           FieldType,
		"Volume":         FieldShares,
		"Open time":      FieldDate,
		"Open price":     FieldValue,
		"Purchase value": FieldGrossAmount,
		"Comment":        FieldNote,
	},
	MultiplyValue: true,
}

// ClosedPositions is the closed positions report.
var ClosedPositions = Schema{
	Name:  "closed",
	Sheet: grid.SheetClosed,
	Columns: []string{
		"Position", "Symbol", "Type", "Volume", "Open time", "Open price", "Close time", "Close price",
		"Open origin", "Close origin", "Purchase value", "Sale value", "SL", "TP", "Margin", "Commission",
		"Swap", "Rollover", "Gross P/L", "Comment",
	},
	Required: []string{
		"Position", "Symbol", "Volume", "Open time", "Open price",
		LabelCloseTime, LabelClosePrice, LabelGrossPL,
	},
	Rename: map[string]string{
		"Position":       FieldPosition,
		"Symbol":         FieldTicker,
		"Type":           FieldType,
		"Volume":         FieldShares,
		"Open time":      FieldDate,
		"Open price":     FieldValue,
		"Purchase value": FieldGrossAmount,
		"Comment":        FieldNote,
	},
	MergeLegs: true,
}
