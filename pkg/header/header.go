// Package header reads the account metadata block that sits above the
// tables of a broker report sheet.
package header

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/xtbpp/pkg/grid"
)

// Anchor labels of the metadata block.
const (
	LabelName    = "Name and surname"
	LabelBalance = "Balance"
	LabelTotal   = "Total"
)

// Offsets of the grand total row.
const (
	totalLabelCol    = 1
	totalValueCol    = 6
	totalCurrencyCol = 7
)

// Info is the metadata of one report sheet. Absent numbers are invalid
// NullDecimals, absent strings are empty.
type Info struct {
	Holder   string
	Account  string
	Currency string

	Balance     decimal.NullDecimal
	Equity      decimal.NullDecimal
	Margin      decimal.NullDecimal
	FreeMargin  decimal.NullDecimal
	MarginLevel decimal.NullDecimal

	Total         decimal.NullDecimal
	TotalCurrency string
}

// Locate returns the first row holding a cell equal to label.
func Locate(g *grid.Grid, label string) (int, bool) {
	r, _, ok := locate(g, label)
	return r, ok
}

func locate(g *grid.Grid, label string) (row, col int, ok bool) {
	for r := 0; r < g.Len(); r++ {
		for c, cell := range g.Row(r) {
			if cell.String() == label {
				return r, c, true
			}
		}
	}
	return -1, -1, false
}

// valuesBelow returns the non-empty cells of the row under (r, c), from
// column c onward.
func valuesBelow(g *grid.Grid, r, c int) []grid.Cell {
	var out []grid.Cell
	for col := c; col < g.Width(r+1); col++ {
		if cell := g.At(r+1, col); !cell.IsEmpty() {
			out = append(out, cell)
		}
	}
	return out
}

// Read extracts the account block. Missing anchors leave their fields absent.
// The returned error only collects numbers that failed to parse; the Info is
// complete otherwise and safe to use.
func Read(g *grid.Grid) (Info, error) {
	var (
		info Info
		errs []error
	)

	if r, c, ok := locate(g, LabelName); ok {
		values := valuesBelow(g, r, c)
		fields := []*string{&info.Holder, &info.Account, &info.Currency}
		for i, v := range values {
			if i >= len(fields) {
				break
			}
			*fields[i] = strings.TrimSpace(v.String())
		}
	}

	if r, c, ok := locate(g, LabelBalance); ok {
		values := valuesBelow(g, r, c)
		fields := []struct {
			name string
			dst  *decimal.NullDecimal
		}{
			{"Balance", &info.Balance},
			{"Equity", &info.Equity},
			{"Margin", &info.Margin},
			{"Free margin", &info.FreeMargin},
			{"Margin level", &info.MarginLevel},
		}
		for i, v := range values {
			if i >= len(fields) {
				break
			}
			d, err := v.Decimal()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", fields[i].name, err))
				continue
			}
			*fields[i].dst = d
		}
	}

	total, currency, err := ReadTotal(g)
	if err != nil {
		errs = append(errs, err)
	}
	info.Total = total
	info.TotalCurrency = currency

	return info, errors.Join(errs...)
}

// ReadTotal reads the grand total row: the first row whose second cell is
// "Total".
func ReadTotal(g *grid.Grid) (decimal.NullDecimal, string, error) {
	for r := 0; r < g.Len(); r++ {
		if strings.TrimSpace(g.At(r, totalLabelCol).String()) != LabelTotal {
			continue
		}
		currency := strings.TrimSpace(g.At(r, totalCurrencyCol).String())
		total, err := g.At(r, totalValueCol).Decimal()
		if err != nil {
			return decimal.NullDecimal{}, currency, fmt.Errorf("Total: %w", err)
		}
		return total, currency, nil
	}
	return decimal.NullDecimal{}, "", nil
}
