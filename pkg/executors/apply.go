package executors

import (
	"fmt"

	"github.com/yurifrl/xtbpp/pkg/plan"
)

func (e *Executor) Apply(p *plan.Plan) error {
	e.logger.Debug("applying plan", "workbooks", len(p.Workbooks))

	for _, w := range p.Workbooks {
		out, err := e.processor.Run(job(p, w))
		if err != nil {
			return fmt.Errorf("workbook %s: %w", w.File, err)
		}
		fmt.Fprintf(e.out, "wrote %s (%d records)\n", out.Path, len(out.Records))
	}

	return nil
}
