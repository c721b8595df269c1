package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/xtbpp/pkg/config"
	"github.com/yurifrl/xtbpp/pkg/server"
)

func main() {
	flags := pflag.NewFlagSet("xtbpp-server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "Config file")
	flags.String("addr", "", "Listen address (default 0.0.0.0:3000)")
	flags.String("log-level", "", "Log level")
	flags.String("broker-tag", "", "Securities account prefix")
	flags.StringSlice("mode", nil, "Default export modes")
	flags.Bool("full", false, "Write every output column")
	_ = flags.Parse(os.Args[1:])

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "xtbpp",
	})

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		logger.Fatal("config error", "err", err)
	}
	logger.SetLevel(cfg.Level())

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("server error", "err", err)
	}
	logger.Info("starting server", "addr", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
