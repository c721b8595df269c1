// Package grid holds a single worksheet as an immutable matrix of typed cells.
package grid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the type of value a cell holds.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
	Date
)

// TimeLayout is used to stringify date cells.
const TimeLayout = "2006-01-02 15:04:05"

// Cell is one untyped scalar of the sheet.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
}

// TextCell returns a text cell, or an empty cell when s is blank.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: Number, Number: f}
}

// DateCell returns a date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: Date, Time: t}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty
}

// String stringifies the value the way it is compared against labels.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case Date:
		return c.Time.Format(TimeLayout)
	default:
		return ""
	}
}

// Grid is a 0-indexed matrix of cells. Rows may have different widths.
type Grid struct {
	rows [][]Cell

	monthOnlyDates bool
}

// New builds a grid from Go values. Supported values are nil, string, Cell,
// time.Time and the integer and float types; anything else is stringified.
func New(rows [][]any) *Grid {
	g := &Grid{rows: make([][]Cell, len(rows))}
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, v := range row {
			cells[c] = toCell(v)
		}
		g.rows[r] = cells
	}
	return g
}

func fromCells(rows [][]Cell) *Grid {
	return &Grid{rows: rows}
}

// MonthOnlyDates reports whether the sheet came from an xls workbook that
// styles cells with built-in date formats. The xls reader renders those as
// year and month only, so such cells cannot be read back as dates.
func (g *Grid) MonthOnlyDates() bool {
	return g.monthOnlyDates
}

func toCell(v any) Cell {
	switch val := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return val
	case string:
		return TextCell(val)
	case time.Time:
		return DateCell(val)
	case float64:
		return NumberCell(val)
	case float32:
		return NumberCell(float64(val))
	case int:
		return NumberCell(float64(val))
	case int64:
		return NumberCell(float64(val))
	case int32:
		return NumberCell(float64(val))
	default:
		return TextCell(strings.TrimSpace(fmt.Sprint(val)))
	}
}

// Len returns the number of rows.
func (g *Grid) Len() int {
	return len(g.rows)
}

// Width returns the number of cells in row r.
func (g *Grid) Width(r int) int {
	if r < 0 || r >= len(g.rows) {
		return 0
	}
	return len(g.rows[r])
}

// Row returns the cells of row r. Callers must not modify the slice.
func (g *Grid) Row(r int) []Cell {
	if r < 0 || r >= len(g.rows) {
		return nil
	}
	return g.rows[r]
}

// At returns the cell at (r, c); out of range positions are empty.
func (g *Grid) At(r, c int) Cell {
	row := g.Row(r)
	if c < 0 || c >= len(row) {
		return Cell{}
	}
	return row[c]
}
