package converter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/yurifrl/xtbpp/pkg/models"
	"github.com/yurifrl/xtbpp/pkg/normalize"
)

// Mode selects an export.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeOpen    Mode = "open"
	ModeClosed  Mode = "closed"
	ModeDeposit Mode = "deposit"
)

// Modes lists every mode in combined export order.
var Modes = []Mode{ModeDefault, ModeOpen, ModeClosed, ModeDeposit}

var ErrNoModes = errors.New("no export mode selected")

// ParseModes validates a mode selection. The default mode is exclusive: when
// present every other mode is dropped. The result follows combined export
// order.
func ParseModes(raw []string) ([]Mode, error) {
	selected := make(map[Mode]bool)
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			m := Mode(part)
			if !lo.Contains(Modes, m) {
				return nil, fmt.Errorf("unknown export mode %q", part)
			}
			selected[m] = true
		}
	}

	if len(selected) == 0 {
		return nil, ErrNoModes
	}
	if selected[ModeDefault] {
		return []Mode{ModeDefault}, nil
	}
	return lo.Filter(Modes, func(m Mode, _ int) bool { return selected[m] }), nil
}

// ExportModes runs the selected exports in combined export order.
func (c *Converter) ExportModes(path string, modes []Mode) []Result {
	var results []Result
	for _, m := range Modes {
		if !lo.Contains(modes, m) {
			continue
		}
		if m == ModeDefault {
			return []Result{c.ExportCash(path)}
		}
		results = append(results, c.exportMode(path, m))
	}
	return results
}

func (c *Converter) exportMode(path string, m Mode) Result {
	switch m {
	case ModeOpen:
		return c.ExportOpen(path)
	case ModeClosed:
		return c.ExportClosed(path)
	case ModeDeposit:
		return c.ExportDeposit(path)
	}
	return c.ExportCash(path)
}

// Concat joins the records of several exports.
func Concat(results []Result) []models.Record {
	records := []models.Record{}
	for _, r := range results {
		records = append(records, r.Records...)
	}
	return records
}

// FileName is the output name for a workbook: "<stem>_<tag>_<currency>.csv".
func FileName(path, brokerTag, currency string) string {
	if brokerTag == "" {
		brokerTag = normalize.DefaultBrokerTag
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("%s_%s_%s.csv", stem, brokerTag, currency)
}
