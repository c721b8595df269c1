package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"io"

	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/normalize"
)

// Column is one output column: its header label and how a record renders
// into it.
type Column struct {
	Header string
	Value  func(models.Record) string
}

// Columns is the projection Portfolio Performance imports.
var Columns = []Column{
	{"Ticker Symbol", func(r models.Record) string { return r.TickerSymbol }},
	{"Type", func(r models.Record) string { return string(r.OperationType) }},
	{"Shares", func(r models.Record) string { return r.Shares }},
	{"Date", func(r models.Record) string { return normalize.FormatDate(r.Date) }},
	{"Value", func(r models.Record) string { return normalize.FormatDecimal(r.Value) }},
	{"Securities Account", func(r models.Record) string { return r.SecuritiesAccount }},
	{"Note", func(r models.Record) string { return r.Note }},
}

// FullColumns adds the identifier, amount, gross amount and currency fields.
var FullColumns = append(append([]Column{}, Columns...),
	Column{"Identifier", func(r models.Record) string { return r.Identifier }},
	Column{"Amount", func(r models.Record) string { return normalize.FormatAmount(r.Amount) }},
	Column{"Gross Amount", func(r models.Record) string { return r.GrossAmount }},
	Column{"Transaction Currency", func(r models.Record) string { return r.TransactionCurrency }},
	Column{"Currency Gross Amount", func(r models.Record) string { return r.CurrencyGrossAmount }},
	Column{"Cash Account", func(r models.Record) string { return r.CashAccount }},
)

type FilterFunc func(models.Record) bool

// Create renders records as an in-memory CSV document.
func Create(columns []Column, records []models.Record, filter FilterFunc) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer do not fail.
	_ = Write(&buf, columns, records, filter)
	return buf.Bytes()
}

// Write renders the header and every record passing filter.
func Write(w io.Writer, columns []Column, records []models.Record, filter FilterFunc) error {
	cw := stdcsv.NewWriter(w)

	if err := cw.Write(Headers(columns)); err != nil {
		return err
	}

	row := make([]string, len(columns))
	for _, r := range records {
		if filter != nil && !filter(r) {
			continue
		}
		for i, c := range columns {
			row[i] = c.Value(r)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Headers returns the header labels of columns.
func Headers(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Header
	}
	return out
}
