package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ownmap/internal/core/app"
	"ownmap/internal/core/config"
	"ownmap/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./ownmap.toml", "Path to config file")
	noCache    = flag.Bool("no-cache", false, "Ignore a present cache and rescan")
	historyN   = flag.Int("history", 0, "Print the N most recent scan snapshots and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ownmap [flags] <root>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("ownmap v%s\n", app.Version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	root := flag.Arg(0)

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath != "./ownmap.toml" || !os.IsNotExist(err) {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if cfg.Metrics.Address != "" {
		observability.Serve(cfg.Metrics.Address, func(err error) {
			slog.Error("metrics listener failed", "address", cfg.Metrics.Address, "error", err)
		})
	}

	a, err := app.New(cfg, root)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if *historyN > 0 {
		if err := a.PrintHistory(os.Stdout, *historyN); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		os.Exit(0)
	}

	run, err := a.Run(context.Background(), app.RunOptions{NoCache: *noCache})
	if err != nil {
		slog.Error("scan failed", "root", root, "error", err)
		os.Exit(1)
	}

	if err := a.GenerateReport(run.Result); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	a.PrintSummary(os.Stdout, run)
}
