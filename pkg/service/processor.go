package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/yurifrl/xtbpp/pkg/config"
	"github.com/yurifrl/xtbpp/pkg/converter"
	"github.com/yurifrl/xtbpp/pkg/csv"
	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/reconcile"
)

// Extensions lists the workbook formats picked up from directories.
var Extensions = []string{".xlsx", ".xlsm", ".xls"}

type Processor struct {
	config    *config.Config
	logger    *log.Logger
	converter *converter.Converter
	columns   []csv.Column
}

func NewProcessor(cfg *config.Config, logger *log.Logger) (*Processor, error) {
	opts, err := cfg.ConverterOptions()
	if err != nil {
		return nil, err
	}
	columns := csv.Columns
	if cfg.FullColumns {
		columns = csv.FullColumns
	}
	return &Processor{
		config:    cfg,
		logger:    logger,
		converter: converter.New(logger, opts),
		columns:   columns,
	}, nil
}

// Job is one workbook to convert.
type Job struct {
	Input string
	// Modes defaults to the configured modes.
	Modes []converter.Mode
	// OutputDir defaults to the configured directory, then to the input's.
	OutputDir string
	// Output overrides the generated file name.
	Output string
	// Filter drops records from the output when set.
	Filter csv.FilterFunc
}

// Outcome is what a job produced.
type Outcome struct {
	Job      Job
	Path     string
	Currency string
	Results  []converter.Result
	Records  []models.Record
	Pairing  *reconcile.Report
}

// Preview runs the exports of a job without writing anything.
func (p *Processor) Preview(job Job) (Outcome, error) {
	modes := job.Modes
	if len(modes) == 0 {
		var err error
		if modes, err = p.config.ExportModes(); err != nil {
			return Outcome{}, err
		}
	}

	out := Outcome{Job: job, Currency: p.converter.Currency(job.Input)}
	out.Results = p.converter.ExportModes(job.Input, modes)
	out.Records = converter.Concat(out.Results)
	if job.Filter != nil {
		out.Records = lo.Filter(out.Records, func(r models.Record, _ int) bool { return job.Filter(r) })
	}
	out.Path = p.outputPath(job, out.Currency)

	for _, res := range out.Results {
		if res.Mode != converter.ModeClosed {
			continue
		}
		out.Pairing = reconcile.Build(res.Records)
		for _, e := range out.Pairing.Unpaired() {
			p.logger.Warn("unpaired closed position", "file", job.Input, "position", e.Position, "status", e.Status)
		}
	}
	return out, nil
}

// Run converts a job and writes its CSV file.
func (p *Processor) Run(job Job) (Outcome, error) {
	out, err := p.Preview(job)
	if err != nil {
		return out, err
	}
	if len(out.Records) == 0 {
		p.logger.Warn("no records exported", "file", job.Input)
	}

	if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
		return out, fmt.Errorf("error creating output directory: %w", err)
	}
	output, err := os.Create(out.Path)
	if err != nil {
		return out, fmt.Errorf("error creating output file: %w", err)
	}
	defer output.Close()

	if err := p.Write(output, out.Records); err != nil {
		return out, fmt.Errorf("error writing output file: %w", err)
	}

	p.logger.Info("processed file successfully", "input", job.Input, "output", out.Path, "records", len(out.Records))
	return out, nil
}

// Write renders records with the configured columns.
func (p *Processor) Write(w io.Writer, records []models.Record) error {
	return csv.Write(w, p.columns, records, nil)
}

// Render returns the CSV document of records with the configured columns.
func (p *Processor) Render(records []models.Record) []byte {
	return csv.Create(p.columns, records, nil)
}

func (p *Processor) ProcessFile(path string) (Outcome, error) {
	return p.Run(Job{Input: path})
}

func (p *Processor) ProcessDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsWorkbook(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		p.logger.Info("processing file", "path", path)
		if _, err := p.ProcessFile(path); err != nil {
			p.logger.Error("failed to process entry", "file", entry.Name(), "error", err)
		}
	}

	return nil
}

// IsWorkbook reports whether name has a supported workbook extension.
func IsWorkbook(name string) bool {
	return lo.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

func (p *Processor) outputPath(job Job, currency string) string {
	dir := job.OutputDir
	if dir == "" {
		dir = p.config.GetOutputPath()
	}
	if dir == "" {
		dir = filepath.Dir(job.Input)
	}

	name := job.Output
	if name == "" {
		name = converter.FileName(job.Input, p.config.BrokerTag, currency)
	}
	return filepath.Join(dir, name)
}
