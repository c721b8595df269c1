// Package converter exposes the export entry points. Each entry point
// handles a single workbook and never fails: problems are logged and an
// empty result is returned.
package converter

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/xtbpp/pkg/grid"
	"github.com/yurifrl/xtbpp/pkg/header"
	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/normalize"
	"github.com/yurifrl/xtbpp/pkg/table"
)

type Options struct {
	// BrokerTag prefixes the securities account, "XTB" when empty.
	BrokerTag string
	// DepositDate dates the synthetic deposit, now when zero.
	DepositDate time.Time
}

// Result is the outcome of one export.
type Result struct {
	Mode    Mode
	Info    header.Info
	Records []models.Record
}

// Empty reports whether the export produced no records.
func (r Result) Empty() bool {
	return len(r.Records) == 0
}

type Converter struct {
	logger *log.Logger
	opts   Options
}

func New(logger *log.Logger, opts Options) *Converter {
	return &Converter{logger: logger, opts: opts}
}

// ExportCash converts the cash operations history.
func (c *Converter) ExportCash(path string) Result {
	return c.export(path, ModeDefault, func() ([]models.Record, header.Info, error) {
		return c.table(path, normalize.CashHistory)
	})
}

// ExportOpen converts the open positions report.
func (c *Converter) ExportOpen(path string) Result {
	return c.export(path, ModeOpen, func() ([]models.Record, header.Info, error) {
		return c.table(path, normalize.OpenPositions)
	})
}

// ExportClosed converts the closed positions report.
func (c *Converter) ExportClosed(path string) Result {
	return c.export(path, ModeClosed, func() ([]models.Record, header.Info, error) {
		return c.table(path, normalize.ClosedPositions)
	})
}

// ExportDeposit emits a single deposit worth the account equity.
func (c *Converter) ExportDeposit(path string) Result {
	return c.export(path, ModeDeposit, func() ([]models.Record, header.Info, error) {
		_, info, err := c.sheet(path, grid.SheetCash)
		if err != nil {
			return nil, info, err
		}
		n := normalize.New(c.logger, info.Currency, c.opts.BrokerTag)
		return n.Deposit(nil, info, c.opts.DepositDate), info, nil
	})
}

// Currency returns the account currency from the cash operations header, or
// an empty string when it cannot be read.
func (c *Converter) Currency(path string) string {
	_, info, err := c.sheet(path, grid.SheetCash)
	if err != nil {
		c.logger.Debug("Error reading account currency", "path", path, "error", err)
		return ""
	}
	return info.Currency
}

func (c *Converter) export(path string, mode Mode, run func() ([]models.Record, header.Info, error)) (res Result) {
	res = Result{Mode: mode, Records: []models.Record{}}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Export failed", "path", path, "mode", mode, "panic", r)
			res = Result{Mode: mode, Records: []models.Record{}}
		}
	}()

	records, info, err := run()
	if err != nil {
		c.logger.Error("Export failed", "path", path, "mode", mode, "error", err)
		return res
	}

	res.Info = info
	if records != nil {
		res.Records = records
	}
	c.logger.Debug("Exported", "path", path, "mode", mode, "records", len(res.Records))
	return res
}

func (c *Converter) sheet(path string, sheet int) (*grid.Grid, header.Info, error) {
	g, err := grid.Load(path, sheet)
	if err != nil {
		return nil, header.Info{}, err
	}
	if g.MonthOnlyDates() {
		c.logger.Warn("Workbook uses built-in date formats, xls dates are read as year and month only", "path", path, "sheet", sheet)
	}

	info, err := header.Read(g)
	if err != nil {
		c.logger.Debug("Error reading header values", "path", path, "sheet", sheet, "error", err)
	}
	if info.Currency == "" {
		c.logger.Warn("Account currency not found", "path", path, "sheet", sheet)
	}

	return g, info, nil
}

func (c *Converter) table(path string, s normalize.Schema) ([]models.Record, header.Info, error) {
	g, info, err := c.sheet(path, s.Sheet)
	if err != nil {
		return nil, info, err
	}

	layout, err := table.Extract(g, s.Columns)
	if err != nil {
		return nil, info, fmt.Errorf("error locating %s table: %w", s.Name, err)
	}

	n := normalize.New(c.logger, info.Currency, c.opts.BrokerTag)
	records, err := n.Normalize(s, layout, table.Rows(g, layout))
	if err != nil {
		return nil, info, fmt.Errorf("error normalizing %s table: %w", s.Name, err)
	}

	return normalize.StripTickers(records), info, nil
}
