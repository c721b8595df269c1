package grid

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Sheet positions of the broker report workbook.
const (
	SheetClosed = 0
	SheetOpen   = 1
	SheetCash   = 3
)

// Load reads the sheet at the given position of an .xlsx or .xls workbook.
func Load(path string, sheet int) (*Grid, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Path: path, Sheet: sheet, Err: ErrFileNotFound}
		}
		return nil, &LoadError{Path: path, Sheet: sheet, Err: err}
	}

	var (
		g   *Grid
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		var rows [][]Cell
		if rows, err = loadXLSX(path, sheet); err == nil {
			g = fromCells(rows)
		}
	case ".xls":
		g, err = loadXLS(path, sheet)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, &LoadError{Path: path, Sheet: sheet, Err: err}
	}
	return g, nil
}

func loadXLSX(path string, sheet int) ([][]Cell, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet < 0 || sheet >= len(sheets) {
		return nil, fmt.Errorf("%w: position %d, workbook has %d", ErrSheetNotFound, sheet, len(sheets))
	}
	name := sheets[sheet]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading rows of %q: %w", name, err)
	}

	rows := make([][]Cell, len(raw))
	for r, row := range raw {
		cells := make([]Cell, len(row))
		for c, value := range row {
			cells[c] = xlsxCell(f, name, r, c, value)
		}
		rows[r] = cells
	}
	return rows, nil
}

// xlsxCell types a raw cell value using the cell type and its number format.
func xlsxCell(f *excelize.File, sheet string, r, c int, value string) Cell {
	if strings.TrimSpace(value) == "" {
		return Cell{}
	}
	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return TextCell(value)
	}
	if typ, err := f.GetCellType(sheet, axis); err == nil {
		switch typ {
		case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
			return TextCell(value)
		}
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return TextCell(value)
	}
	if isDateFormatted(f, sheet, axis) {
		if t, err := excelize.ExcelDateToTime(n, false); err == nil {
			return DateCell(t.Round(time.Second))
		}
	}
	return NumberCell(n)
}

func isDateFormatted(f *excelize.File, sheet, axis string) bool {
	idx, err := f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	style, err := f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateLayout(*style.CustomNumFmt)
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22,
		style.NumFmt >= 27 && style.NumFmt <= 36,
		style.NumFmt >= 45 && style.NumFmt <= 47,
		style.NumFmt >= 50 && style.NumFmt <= 58:
		return true
	}
	return false
}

func isDateLayout(layout string) bool {
	l := strings.ToLower(layout)
	// Quoted literals and bracketed sections ([Red], [$-409]) are not tokens.
	var b strings.Builder
	quoted, bracket := false, false
	for _, r := range l {
		switch {
		case r == '"':
			quoted = !quoted
		case r == '[' && !quoted:
			bracket = true
		case r == ']' && !quoted:
			bracket = false
		case !quoted && !bracket:
			b.WriteRune(r)
		}
	}
	l = b.String()
	return strings.ContainsAny(l, "yd") || strings.Contains(l, "hh") || strings.Contains(l, "mmm")
}

func loadXLS(path string, sheet int) (*Grid, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}
	if workbook == nil {
		return nil, fmt.Errorf("error creating workbook: no workbook stream")
	}
	if sheet < 0 || sheet >= workbook.NumSheets() {
		return nil, fmt.Errorf("%w: position %d, workbook has %d", ErrSheetNotFound, sheet, workbook.NumSheets())
	}
	ws := workbook.GetSheet(sheet)
	if ws == nil {
		return nil, fmt.Errorf("%w: position %d", ErrSheetNotFound, sheet)
	}

	rows := make([][]Cell, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]Cell, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells[c] = xlsCell(row.Col(c))
		}
		rows = append(rows, cells)
	}

	g := fromCells(rows)
	g.monthOnlyDates = hasBuiltinDateFormat(workbook)
	return g, nil
}

// xlsRow returns nil for rows the sheet has no record of; the reader
// dereferences a nil row in that case.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

// xlsCell types a legacy xls value; the reader only hands out strings.
// Cells with a custom date format arrive as RFC 3339 timestamps.
func xlsCell(value string) Cell {
	s := strings.TrimSpace(value)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return NumberCell(n)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateCell(t)
	}
	return TextCell(value)
}

// hasBuiltinDateFormat reports whether any cell style uses one of the
// built-in date formats the reader renders as "2006.01".
func hasBuiltinDateFormat(wb *xls.WorkBook) bool {
	for _, xf := range wb.Xfs {
		var n uint16
		switch x := xf.(type) {
		case *xls.Xf8:
			n = x.Format
		case *xls.Xf5:
			n = x.Format
		default:
			continue
		}
		switch {
		case n >= 14 && n <= 17, n == 22, n >= 27 && n <= 36, n >= 50 && n <= 58:
			return true
		}
	}
	return false
}
