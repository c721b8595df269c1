// Package reconcile checks the closed positions ledger: every position must
// have exactly one opening and one closing leg. It is kept apart from the
// CLI so the executors and the server can share it.
package reconcile

import "github.com/yurifrl/xtbpp/pkg/models"

// Status is the pairing result for one position.
type Status int

const (
	Paired Status = iota
	MissingOpen
	MissingClose
	Duplicate
)

func (s Status) String() string {
	switch s {
	case Paired:
		return "paired"
	case MissingOpen:
		return "missing open leg"
	case MissingClose:
		return "missing close leg"
	case Duplicate:
		return "duplicate leg"
	}
	return "unknown"
}

// Entry links the legs found for one position.
type Entry struct {
	Position string
	Open     *models.Record // nil when status == MissingOpen
	Close    *models.Record // nil when status == MissingClose
	Status   Status
}

// Report lists every position that has at least one leg, in order of first
// appearance.
type Report struct {
	Items    []Entry
	unpaired []Entry
}

// Build groups legs by position. Records without a leg (CFD cash flows) are
// ignored.
func Build(records []models.Record) *Report {
	var order []string
	type legs struct {
		open, close []int
	}
	byPosition := make(map[string]*legs)

	for i, r := range records {
		if r.Leg == models.NoLeg {
			continue
		}
		l, ok := byPosition[r.Position]
		if !ok {
			l = &legs{}
			byPosition[r.Position] = l
			order = append(order, r.Position)
		}
		if r.Leg == models.OpenLeg {
			l.open = append(l.open, i)
		} else {
			l.close = append(l.close, i)
		}
	}

	report := &Report{Items: make([]Entry, 0, len(order))}
	for _, pos := range order {
		l := byPosition[pos]
		e := Entry{Position: pos}
		if len(l.open) > 0 {
			e.Open = &records[l.open[0]]
		}
		if len(l.close) > 0 {
			e.Close = &records[l.close[0]]
		}

		switch {
		case len(l.open) > 1 || len(l.close) > 1:
			e.Status = Duplicate
		case e.Open == nil:
			e.Status = MissingOpen
		case e.Close == nil:
			e.Status = MissingClose
		default:
			e.Status = Paired
		}

		report.Items = append(report.Items, e)
		if e.Status != Paired {
			report.unpaired = append(report.unpaired, e)
		}
	}
	return report
}

// PairedCount returns how many positions have exactly one leg of each kind.
func (r *Report) PairedCount() int {
	return len(r.Items) - len(r.unpaired)
}

func (r *Report) UnpairedCount() int {
	return len(r.unpaired)
}

// Unpaired returns the entries that need attention.
func (r *Report) Unpaired() []Entry {
	return r.unpaired
}
