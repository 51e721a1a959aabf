package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"p2p-report/internal/logger"
	"p2p-report/internal/report"
	"p2p-report/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	days := flag.Int("days", 0, "lookback window in days (overrides analysis.days_back)")
	output := flag.String("output", "", "report file path (overrides analysis.output_dir/output_file)")
	show := flag.Bool("show", false, "print the current report file and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *days, *output)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return 1
	}

	if *show {
		return showReport(cfg.OutputPath())
	}

	if err := initializeSystem(); err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		return 1
	}
	defer shutdownSystem()

	fmt.Println("════════════════════════════════════════════════════════════")
	fmt.Println("  BINANCE P2P REPORT")
	fmt.Println("════════════════════════════════════════════════════════════")

	creds, err := store.LoadCredentials()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		if errors.Is(err, store.ErrMissingCredentials) {
			fmt.Println("   Set them in the environment or in a .env file.")
		}
		return 1
	}
	fmt.Printf("🔑 API Key:    %s\n", store.Mask(creds.APIKey))
	fmt.Printf("🔒 API Secret: %s\n", store.Mask(creds.APISecret))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := initializeRunner(cfg, creds)
	start, end := runner.Window()
	logger.Info(ctx, "Starting P2P report run",
		"from", start.In(cfg.Location()).Format("2006-01-02 15:04"),
		"to", end.In(cfg.Location()).Format("2006-01-02 15:04"),
		"output", cfg.OutputPath(),
	)

	res := runner.Run(ctx)
	if res.Err != nil {
		fmt.Printf("\n❌ Run failed: %v\n", res.Err)
	}
	if res.Path != "" {
		fmt.Printf("💾 Saved to: %s\n\n", res.Path)
		if env, err := report.Load(res.Path); err == nil {
			_ = report.WriteSummary(os.Stdout, env)
		}
	}
	return res.ExitCode
}

func showReport(path string) int {
	env, err := report.Load(path)
	if err != nil {
		fmt.Printf("Error reading report: %v\n", err)
		return 1
	}
	if err := report.WriteSummary(os.Stdout, env); err != nil {
		fmt.Printf("Error printing report: %v\n", err)
		return 1
	}
	return 0
}

func splitOutput(path string) (dir, file string) {
	dir, file = filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return filepath.Clean(dir), file
}
