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
	"product-export/pipeline"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultSearchConfig()
	inputDefault := defaultCfg.InputFile
	if value, ok := config.EnvString("EXPORT_SEARCH_INPUT"); ok {
		inputDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("EXPORT_SEARCH_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("EXPORT_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	inputFile := flag.String("input", inputDefault, "Input file with search keywords")
	outputFile := flag.String("output", outputDefault, "Output CSV path")
	limit := flag.Int("limit", defaultCfg.Limit, "Process at most N keywords (0 = all)")
	maxPages := flag.Int("max-pages", defaultCfg.MaxPages, "Maximum result pages per keyword")
	requestDelayMs := flag.Int("request-delay", int(defaultCfg.RequestDelay/time.Millisecond), "Delay after each request (milliseconds)")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "HTTP timeout (seconds)")
	envFile := flag.String("env-file", config.DefaultEnvFile, "Environment file with credentials")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	apiKey, err := config.LoadSearchAPIKey(*envFile)
	if err != nil {
		slog.Error("loading credentials", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := defaultCfg
	cfg.APIKey = apiKey
	cfg.InputFile = *inputFile
	cfg.OutputFile = *outputFile
	cfg.Limit = *limit
	cfg.MaxPages = *maxPages
	cfg.RequestDelay = time.Duration(*requestDelayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting search export",
		slog.String("input", cfg.InputFile),
		slog.String("output", cfg.OutputFile),
		slog.Int("max_pages", cfg.MaxPages),
	)

	metrics := fetch.NewMetrics()
	metricsServer := startMetricsServer(cfg.MetricsAddr, metrics)

	writer, err := pipeline.NewSearchWriter(cfg.OutputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	client := fetch.NewSearchClient(cfg, metrics)

	results, err := pipeline.RunSearch(context.Background(), cfg, client, writer, metrics, nil)
	if err != nil {
		slog.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printResults(results, cfg.OutputFile)
}

func printResults(results []pipeline.KeywordResult, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Search export complete")
	fmt.Printf("  Output file:   %s\n", outputFile)

	total := 0
	for _, result := range results {
		fmt.Printf("  %-24s %d rows\n", result.Keyword, result.Rows)
		total += result.Rows
	}
	fmt.Printf("  Total rows:    %d\n", total)
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
