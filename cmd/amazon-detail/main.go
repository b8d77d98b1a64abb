package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"product-export/config"
	"product-export/fetch"
	"product-export/models"
	"product-export/pipeline"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultDetailConfig()
	inputDefault := defaultCfg.InputFile
	if value, ok := config.EnvString("EXPORT_DETAIL_INPUT"); ok {
		inputDefault = value
	}
	limitDefault := defaultCfg.Limit
	if value, ok, err := config.EnvInt("EXPORT_DETAIL_LIMIT"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid EXPORT_DETAIL_LIMIT: %v\n", err)
		os.Exit(1)
	} else if ok {
		limitDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("EXPORT_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	inputFile := flag.String("input", inputDefault, "Input file with product identifiers")
	outputFile := flag.String("output", "", "Output CSV path (default: timestamped name)")
	limit := flag.Int("limit", limitDefault, "Process at most N identifiers (0 = all)")
	maxAttempts := flag.Int("max-attempts", defaultCfg.MaxAttempts, "Fetch attempts per identifier")
	retryDelayMs := flag.Int("retry-delay", int(defaultCfg.RetryDelay/time.Millisecond), "Base retry delay (milliseconds)")
	requestDelayMs := flag.Int("request-delay", int(defaultCfg.RequestDelay/time.Millisecond), "Delay after each request (milliseconds)")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "HTTP timeout (seconds)")
	envFile := flag.String("env-file", config.DefaultEnvFile, "Environment file with credentials")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	apiKey, err := config.LoadDetailAPIKey(*envFile)
	if err != nil {
		slog.Error("loading credentials", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := defaultCfg
	cfg.APIKey = apiKey
	cfg.InputFile = *inputFile
	if *outputFile != "" {
		cfg.OutputFile = *outputFile
	}
	cfg.Limit = *limit
	cfg.MaxAttempts = *maxAttempts
	cfg.RetryDelay = time.Duration(*retryDelayMs) * time.Millisecond
	cfg.RequestDelay = time.Duration(*requestDelayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting detail export",
		slog.String("input", cfg.InputFile),
		slog.String("output", cfg.OutputFile),
		slog.Int("limit", cfg.Limit),
	)

	metrics := fetch.NewMetrics()
	metricsServer := startMetricsServer(cfg.MetricsAddr, metrics)

	writer, err := pipeline.NewDetailWriter(cfg.OutputFile, cfg.FlushEvery)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	client := fetch.NewDetailClient(cfg, metrics)

	summary, err := pipeline.RunDetail(context.Background(), cfg, client, writer, metrics, nil)
	if err != nil {
		slog.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(summary, cfg.OutputFile)
}

func printSummary(summary *models.RunSummary, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Export complete")
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Printf("  Attempted:     %d\n", summary.Attempted)
	fmt.Printf("  Succeeded:     %d\n", summary.Succeeded)
	fmt.Printf("  Failed:        %d\n", summary.Failed())
	if summary.RemainingCredits != nil {
		fmt.Printf("  API credits:   %d remaining\n", *summary.RemainingCredits)
	}
	if len(summary.FailedKeys) > 0 {
		fmt.Println("  Failed identifiers:")
		for _, key := range summary.FailedKeys {
			fmt.Printf("    %s\n", key)
		}
	}
	fmt.Println(separator)
}

func startMetricsServer(addr string, metrics *fetch.Metrics) *http.Server {
	if addr == "" {
		return nil
	}
	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if isTerminal(os.Stderr) {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
