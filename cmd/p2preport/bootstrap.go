package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"p2p-report/internal/aggregate"
	"p2p-report/internal/exchange/binance"
	"p2p-report/internal/exchange/exchangeobs"
	"p2p-report/internal/interfaces"
	"p2p-report/internal/logger"
	"p2p-report/internal/metrics"
	"p2p-report/internal/pipeline"
	"p2p-report/internal/report"
	"p2p-report/internal/report/reportobs"
	"p2p-report/internal/store"
	"p2p-report/internal/trace"
)

// initializeSystem loads the environment and starts logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem() {
	if err := trace.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown tracer: %v\n", err)
	}
	logger.Sync()
}

// loadConfig reads the optional config file and applies flag overrides
func loadConfig(path string, days int, output string) (*store.Config, error) {
	if days < 0 {
		return nil, fmt.Errorf("-days must be positive, got %d", days)
	}
	cfg, err := store.LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}
	if days > 0 {
		cfg.Analysis.DaysBack = days
	}
	if output != "" {
		cfg.Analysis.OutputDir, cfg.Analysis.OutputFile = splitOutput(output)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// initializeFetcher builds the signed exchange client with observability
func initializeFetcher(cfg *store.Config, creds store.Credentials, rec *metrics.Recorder) interfaces.OrderFetcher {
	client := binance.NewClient(binance.Params{
		APIKey:      creds.APIKey,
		APISecret:   creds.APISecret,
		BaseURL:     cfg.API.BaseURL,
		Endpoint:    cfg.API.Endpoint,
		Timeout:     cfg.Timeout(),
		RowsPerPage: cfg.API.RowsPerPage,
		MaxPages:    cfg.API.MaxPages,
		PageDelay:   cfg.PageDelay(),
		Metrics:     rec,
	})
	return exchangeobs.Wrap(client)
}

// initializeWriter builds the JSON reporter with observability
func initializeWriter(cfg *store.Config) interfaces.ReportWriter {
	return reportobs.Wrap(report.NewReporter(cfg.OutputPath()))
}

func initializeRunner(cfg *store.Config, creds store.Credentials) *pipeline.Runner {
	rec := metrics.New()
	loc := cfg.Location()

	return pipeline.New(pipeline.Params{
		Fetcher:         initializeFetcher(cfg, creds, rec),
		Writer:          initializeWriter(cfg),
		Aggregator:      aggregate.New(cfg.Analysis.CommissionRate, cfg.Analysis.BaseCurrency, loc),
		Metrics:         rec,
		MetricsTextfile: cfg.Metrics.Textfile,
		DaysBack:        cfg.Analysis.DaysBack,
		Location:        loc,
	})
}
