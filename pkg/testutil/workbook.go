// Package testutil builds broker-style workbooks for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a test workbook; nil values leave the cell blank.
type Sheet struct {
	Name string
	Rows [][]any
}

// WriteWorkbook saves the sheets, in order, into a temporary .xlsx file and
// returns its path.
func WriteWorkbook(t testing.TB, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("failed to create sheet %q: %v", name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("bad coordinates: %v", err)
				}
				if err := f.SetCellValue(name, cell, value); err != nil {
					t.Fatalf("failed to set %s!%s: %v", name, cell, err)
				}
			}
		}
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save test workbook: %v", err)
	}
	return path
}

// Report returns the four sheets of a broker report, placing closed, open and
// cash rows at the positions the converter reads them from.
func Report(closed, open, cash [][]any) []Sheet {
	return []Sheet{
		{Name: "Closed", Rows: closed},
		{Name: "Open", Rows: open},
		{Name: "Pending", Rows: [][]any{{"Pending orders"}}},
		{Name: "Cash", Rows: cash},
	}
}
