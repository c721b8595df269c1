// Package table finds a labelled table inside a sheet and reads its rows.
package table

import (
	"fmt"
	"strings"

	"github.com/yurifrl/xtbpp/pkg/grid"
)

// Terminator ends a table when found, case-insensitively, in any cell.
const Terminator = "total"

// Layout is the position of a discovered table.
type Layout struct {
	HeaderRow int
	// Columns maps each matched label to its column index.
	Columns map[string]int
	// Labels lists the matched labels in expected order.
	Labels []string
}

// Has reports whether label was found in the header row.
func (l Layout) Has(label string) bool {
	_, ok := l.Columns[label]
	return ok
}

// Raw is one data row keyed by header label.
type Raw map[string]grid.Cell

// TableNotFoundError is returned when no row looks like the header.
type TableNotFoundError struct {
	Expected []string
	Need     int
	Best     int
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("header row not found: best row matched %d of %d labels, need %d", e.Best, len(e.Expected), e.Need)
}

// Threshold is the number of labels a row must match to be the header.
func Threshold(expected int) int {
	return max(3, expected/2)
}

// Extract scans the grid top-down for the first row containing enough of the
// expected labels verbatim.
func Extract(g *grid.Grid, expected []string) (Layout, error) {
	need := Threshold(len(expected))
	best := 0

	for r := 0; r < g.Len(); r++ {
		cells := g.Row(r)
		positions := make(map[string]int, len(cells))
		for c, cell := range cells {
			s := strings.TrimSpace(cell.String())
			if _, seen := positions[s]; !seen {
				positions[s] = c
			}
		}

		layout := Layout{HeaderRow: r, Columns: make(map[string]int)}
		for _, label := range expected {
			if c, ok := positions[label]; ok {
				layout.Columns[label] = c
				layout.Labels = append(layout.Labels, label)
			}
		}

		if len(layout.Labels) >= need {
			return layout, nil
		}
		best = max(best, len(layout.Labels))
	}

	return Layout{}, &TableNotFoundError{Expected: expected, Need: need, Best: best}
}

// Rows reads the records below the header row until a row mentions the
// terminator or the grid ends. Rows with every mapped column empty are skipped.
func Rows(g *grid.Grid, l Layout) []Raw {
	var out []Raw
	for r := l.HeaderRow + 1; r < g.Len(); r++ {
		if terminates(g.Row(r)) {
			break
		}

		raw := make(Raw, len(l.Labels))
		empty := true
		for _, label := range l.Labels {
			cell := g.At(r, l.Columns[label])
			if !cell.IsEmpty() {
				empty = false
			}
			raw[label] = cell
		}
		if !empty {
			out = append(out, raw)
		}
	}
	return out
}

func terminates(row []grid.Cell) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell.String()), Terminator) {
			return true
		}
	}
	return false
}
