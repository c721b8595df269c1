package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yurifrl/xtbpp/pkg/config"
	"github.com/yurifrl/xtbpp/pkg/executors"
	"github.com/yurifrl/xtbpp/pkg/plan"
	"github.com/yurifrl/xtbpp/pkg/service"
)

var (
	cliFilters filters
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "xtbpp",
	Short: "Convert XTB broker reports to Portfolio Performance CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input_path>",
	Short: "Convert XTB reports (files, directories or globs) to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		processor, err := service.NewProcessor(cfg, logger)
		if err != nil {
			return err
		}
		filter, err := cliFilters.toFilterFunc()
		if err != nil {
			return err
		}
		toStdout, _ := cmd.Flags().GetBool("stdout")

		inputs, err := expandInputs(args[0], logger)
		if err != nil {
			return err
		}
		if toStdout {
			return convertToWriter(processor, inputs, filter, os.Stdout, logger)
		}
		for _, input := range inputs {
			if _, err := processor.Run(service.Job{Input: input, Filter: filter}); err != nil {
				logger.Warn("failed to process file", "error", err, "file", input)
			}
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <plan_file>",
	Short: "Preview a YAML plan of workbooks (dry-run)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, p, err := planExecutor(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Plan preview for %s\n", args[0])
		p.Print()
		return exec.Plan(p)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan_file>",
	Short: "Convert every workbook of a YAML plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, p, err := planExecutor(cmd, args[0])
		if err != nil {
			return err
		}
		return exec.Apply(p)
	},
}

func planExecutor(cmd *cobra.Command, path string) (*executors.Executor, *plan.Plan, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	cfg = p.Configure(cfg)

	logger := newLogger(cfg)
	processor, err := service.NewProcessor(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return executors.New(logger, processor, os.Stdout), p, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "xtbpp",
		Level:           cfg.Level(),
	})
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is ./xtbpp.yaml or ~/.config/xtbpp/xtbpp.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("broker-tag", "", "Securities account prefix (default XTB)")
	rootCmd.PersistentFlags().Bool("full", false, "Write every output column")
	rootCmd.PersistentFlags().String("deposit-date", "", "Date of the simplified deposit (YYYY-MM-DDTHH:MM)")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringSliceVar(&cliFilters.types, "type", nil, "Keep only these operation types")
	rootCmd.PersistentFlags().StringVar(&cliFilters.ticker, "ticker", "", "Keep only this ticker (case insensitive)")

	// Flags specific to the convert subcommand
	convertCmd.Flags().StringP("output", "o", "", "Output directory (default: next to the input)")
	convertCmd.Flags().StringSliceP("mode", "m", nil, "Export modes: default, open, closed, deposit")
	convertCmd.Flags().Bool("stdout", false, "Print CSV to stdout instead of writing files")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
