package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/xtbpp/pkg/config"
	"github.com/yurifrl/xtbpp/pkg/service"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "xtbpp",
	})

	var outputPath, modes string
	flag.StringVar(&outputPath, "o", "", "Output directory (default: same as input file)")
	flag.StringVar(&modes, "m", "default", "Comma separated export modes: default, open, closed, deposit")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		logger.Error("invalid usage", "args", args)
		fmt.Fprintf(os.Stderr, "Usage: xtbpp [-o output_dir] [-m modes] <directory>\n")
		os.Exit(1)
	}

	cfg := config.New(outputPath)
	cfg.Modes = strings.Split(modes, ",")
	if _, err := cfg.ExportModes(); err != nil {
		logger.Fatal("invalid modes", "error", err)
	}

	processor, err := service.NewProcessor(cfg, logger)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	dir := args[0]
	if err := processor.ProcessDirectory(dir); err != nil {
		logger.Fatal("processing failed", "error", err)
	}
}
