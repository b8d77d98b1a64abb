// Package pipeline runs the sequential fetch-normalize-persist loops and
// owns the CSV writers they feed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"product-export/config"
	"product-export/fetch"
	"product-export/input"
	"product-export/models"
	"product-export/normalize"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DetailFetcher fetches the detail payload for one product identifier.
type DetailFetcher interface {
	Product(ctx context.Context, asin string) (*fetch.DetailResult, error)
}

// DetailOutput receives normalized detail rows.
type DetailOutput interface {
	Write(row *models.DetailRow) error
}

// RunDetail processes every identifier in the input list: fetch with the
// configured retry policy, normalize, write, then sleep the inter-request
// delay. Per-key fetch failures are recorded and the run continues; input
// and write failures abort. sleep is injectable for tests; nil means
// time.Sleep.
func RunDetail(ctx context.Context, cfg *config.DetailConfig, fetcher DetailFetcher, out DetailOutput, metrics *fetch.Metrics, sleep func(time.Duration)) (*models.RunSummary, error) {
	if sleep == nil {
		sleep = time.Sleep
	}

	keys, err := input.ReadTokens(cfg.InputFile, cfg.Limit)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded identifiers", slog.Int("count", len(keys)), slog.String("file", cfg.InputFile))
	if cfg.Limit > 0 {
		slog.Info("sampling limit active", slog.Int("limit", cfg.Limit))
	}

	// Per-run cache so a duplicated identifier in the input does not spend
	// API quota twice.
	cache, err := lru.New[string, *models.DetailRow](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create row cache: %w", err)
	}

	policy := fetch.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     fetch.LinearBackoff(cfg.RetryDelay),
		Sleep:       sleep,
	}

	summary := &models.RunSummary{Attempted: len(keys)}
	for i, key := range keys {
		slog.Info("processing identifier",
			slog.Int("index", i+1),
			slog.Int("total", len(keys)),
			slog.String("asin", key),
		)

		if row, ok := cache.Get(key); ok {
			if err := out.Write(row); err != nil {
				return summary, fmt.Errorf("write row for %s: %w", key, err)
			}
			summary.Succeeded++
			metrics.AddRows("detail", 1)
			continue
		}

		var result *fetch.DetailResult
		fetchErr := policy.Do(func(attempt int) error {
			if attempt > 1 {
				metrics.IncRetries()
				slog.Debug("retrying identifier", slog.String("asin", key), slog.Int("attempt", attempt))
			}
			r, err := fetcher.Product(ctx, key)
			if err != nil {
				return err
			}
			result = r
			return nil
		})

		if fetchErr != nil {
			summary.FailedKeys = append(summary.FailedKeys, key)
			var apiErr *fetch.APIError
			if errors.As(fetchErr, &apiErr) {
				slog.Warn("no data for identifier", slog.String("asin", key), slog.String("message", apiErr.Message))
			} else {
				slog.Warn("no data for identifier", slog.String("asin", key), slog.Any("error", fetchErr))
			}
		} else {
			if result.RemainingCredits != nil {
				summary.RemainingCredits = result.RemainingCredits
			}
			row := normalize.DetailRow(key, result.Detail)
			if err := out.Write(row); err != nil {
				return summary, fmt.Errorf("write row for %s: %w", key, err)
			}
			cache.Add(key, row)
			summary.Succeeded++
			metrics.AddRows("detail", 1)
		}

		// Rate-limit courtesy delay, success or not.
		sleep(cfg.RequestDelay)
	}

	return summary, nil
}
