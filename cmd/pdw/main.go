package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pdw/internal/config"
	"pdw/internal/etl"
	"pdw/internal/log"
	"pdw/internal/notify"
	"pdw/internal/storage"
	"pdw/internal/workbook"
	"pdw/internal/workbook/excel"
	"pdw/internal/workbook/google"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "validate configuration and exit")
	skipLoader := flag.Bool("skip-loader", false, "skip the extraction and load phase")
	skipReports := flag.Bool("skip-reports", false, "skip report rendering and exports")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Optional .env file; real environment wins over it.
	_ = godotenv.Load()

	logConfig := log.DefaultConfig()
	if *verbose {
		logConfig.Level = slog.LevelDebug
	}
	logger := log.New(logConfig)
	log.SetDefault(logger)

	cfg := config.Load()
	if *skipLoader {
		cfg.RunLoader = false
	}
	if *skipReports {
		cfg.RunReports = false
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if *dryRun {
		logger.Info("Configuration valid", "backend", cfg.WorkbookBackend, "database", cfg.DatabasePath)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	var src workbook.Source
	switch cfg.WorkbookBackend {
	case "sheets":
		cli, err := google.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets source", "error", err)
			os.Exit(1)
		}
		src = cli
		logger.Info("Initialized Google Sheets source", "backend", cfg.WorkbookBackend)
	default:
		file, err := excel.Open(cfg.InputWorkbook)
		if err != nil {
			logger.Error("Failed to open input workbook", "error", err, "path", cfg.InputWorkbook)
			os.Exit(1)
		}
		defer file.Close()
		src = file
		logger.Info("Opened input workbook", "path", cfg.InputWorkbook)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	defer store.Close()

	notifier, err := notify.NewNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer notifier.Close()

	pipeline := etl.New(cfg, src, store, notifier, logger)
	started := time.Now()
	logger.Info("Starting run", "run_id", pipeline.RunID(), "backend", cfg.WorkbookBackend)

	if err := pipeline.Run(ctx); err != nil {
		logger.Error("Run failed", "error", err, "run_id", pipeline.RunID())
		os.Exit(1)
	}
	logger.Info("Run finished", "run_id", pipeline.RunID(), "elapsed", time.Since(started).String())
}
