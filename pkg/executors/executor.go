package executors

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/xtbpp/pkg/plan"
	"github.com/yurifrl/xtbpp/pkg/service"
)

type Executor struct {
	logger    *log.Logger
	processor *service.Processor
	out       io.Writer
}

func New(logger *log.Logger, processor *service.Processor, out io.Writer) *Executor {
	return &Executor{
		logger:    logger,
		processor: processor,
		out:       out,
	}
}

func job(p *plan.Plan, w plan.Workbook) service.Job {
	return service.Job{
		Input:     w.File,
		Modes:     w.ParsedModes(),
		OutputDir: p.OutputDir,
		Output:    w.Output,
	}
}
