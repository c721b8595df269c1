package executors

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/xtbpp/pkg/plan"
	"github.com/yurifrl/xtbpp/pkg/service"
)

var (
	fileStyle  = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
)

// Plan converts every workbook of the plan in memory and prints what apply
// would write. Nothing touches the disk.
func (e *Executor) Plan(p *plan.Plan) error {
	e.logger.Debug("planning", "workbooks", len(p.Workbooks))

	var files, records int
	for _, w := range p.Workbooks {
		out, err := e.processor.Preview(job(p, w))
		if err != nil {
			return fmt.Errorf("workbook %s: %w", w.File, err)
		}
		e.print(out)
		files++
		records += len(out.Records)
	}

	fmt.Fprintf(e.out, "\nPlan: %d file(s) will be written with %d record(s)\n", files, records)
	return nil
}

func (e *Executor) print(out service.Outcome) {
	fmt.Fprintln(e.out, fileStyle.Render(fmt.Sprintf("%s -> %s", out.Job.Input, out.Path)))

	for _, res := range out.Results {
		line := fmt.Sprintf("  %-8s %4d record(s)", res.Mode, len(res.Records))
		if res.Empty() {
			fmt.Fprintln(e.out, emptyStyle.Render("= "+line))
			continue
		}
		fmt.Fprintln(e.out, countStyle.Render("+ "+line))
	}

	if out.Pairing == nil {
		return
	}
	for _, entry := range out.Pairing.Unpaired() {
		line := fmt.Sprintf("  ! position %s: %s", entry.Position, entry.Status)
		fmt.Fprintln(e.out, warnStyle.Render(line))
	}
}
