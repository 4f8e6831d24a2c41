package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }

	cfg, rest, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	if len(rest) == 0 {
		cli.PrintHelp(os.Stdout)
		return 2
	}

	logger, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		ui.Fail(os.Stderr, "logging: "+err.Error())
		return 1
	}
	defer logger.Close()
	logger.Debug("config loaded", "files", cfg.Files, "url", cfg.APIURL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout.Duration),
		api.WithInsecureTLS(cfg.InsecureTLS),
		api.WithMetrics(api.NewMetrics(reg)),
		api.WithLogger(logger.Logger),
	)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		ms, err := cli.StartMetrics(cfg.MetricsAddr, reg, logger.Logger)
		if err != nil {
			ui.Fail(os.Stderr, fmt.Sprintf("metrics: %v", err))
			return 1
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = ms.Close(sctx)
		}()
	}

	r := &cli.Runner{
		Remote: client,
		Logger: logger.Logger,
		Group:  cfg.Group,
	}
	return r.Run(ctx, rest)
}
