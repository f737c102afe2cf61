package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"JurisMonitor/internal/app"
	"JurisMonitor/internal/config"
	"JurisMonitor/internal/logging"
)

func main() {
	maxBatch := flag.Int("max", 0, "maximum processes per run in once mode (0 = all)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [serve|once]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	mode := "serve"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(mode, *maxBatch, cfg, logger); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}

func run(mode string, maxBatch int, cfg config.Config, logger *slog.Logger) error {
	if mode != "serve" && mode != "once" {
		flag.Usage()
		return fmt.Errorf("unknown mode %q", mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer application.Close()

	if mode == "serve" {
		return application.Serve(ctx)
	}

	summary, err := application.RunOnce(ctx, maxBatch)
	if encErr := json.NewEncoder(os.Stdout).Encode(summary); encErr != nil {
		logger.Error("encode summary", "error", encErr)
	}
	return err
}
