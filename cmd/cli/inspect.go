package main

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/xtbpp/pkg/grid"
	"github.com/yurifrl/xtbpp/pkg/header"
	"github.com/yurifrl/xtbpp/pkg/normalize"
	"github.com/yurifrl/xtbpp/pkg/table"
)

// sheetReport is what inspect prints for one report sheet.
type sheetReport struct {
	Report  string
	Sheet   int
	Rows    int
	Header  header.Info
	Columns map[string]int
	Records int
	Error   string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <workbook>",
	Short: "Dump header metadata and table layouts of a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := pp.New()
		printer.SetOutput(os.Stdout)
		printer.SetColoringEnabled(false)

		for _, s := range []normalize.Schema{normalize.ClosedPositions, normalize.OpenPositions, normalize.CashHistory} {
			printer.Println(inspectSheet(args[0], s))
		}
		return nil
	},
}

func inspectSheet(path string, s normalize.Schema) sheetReport {
	report := sheetReport{Report: s.Name, Sheet: s.Sheet}

	g, err := grid.Load(path, s.Sheet)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Rows = g.Len()

	info, err := header.Read(g)
	if err != nil {
		report.Error = fmt.Sprintf("header: %v", err)
	}
	report.Header = info

	layout, err := table.Extract(g, s.Columns)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Columns = layout.Columns
	report.Records = len(table.Rows(g, layout))
	return report
}
