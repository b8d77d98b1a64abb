package pipeline

import (
	"context"
	"log/slog"
	"time"

	"product-export/config"
	"product-export/fetch"
	"product-export/input"
	"product-export/models"
	"product-export/normalize"
)

// SearchFetcher fetches one page of results for a keyword.
type SearchFetcher interface {
	Page(ctx context.Context, keyword string, page int) (*models.SearchPage, error)
}

// SearchOutput receives normalized search rows.
type SearchOutput interface {
	Write(rows []*models.SearchRow) error
}

// KeywordResult is the per-keyword outcome of a search run.
type KeywordResult struct {
	Keyword string
	Rows    int
}

// RunSearch processes every keyword in the input list, fetching up to
// cfg.MaxPages pages each. Pagination for a keyword stops early when a page
// fails, yields zero products, or carries no next-page indicator. Write
// failures abort the run. sleep is injectable for tests; nil means
// time.Sleep.
func RunSearch(ctx context.Context, cfg *config.SearchConfig, fetcher SearchFetcher, out SearchOutput, metrics *fetch.Metrics, sleep func(time.Duration)) ([]KeywordResult, error) {
	if sleep == nil {
		sleep = time.Sleep
	}

	keywords, err := input.ReadLines(cfg.InputFile, cfg.Limit)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded keywords", slog.Int("count", len(keywords)), slog.String("file", cfg.InputFile))

	var results []KeywordResult
	for _, keyword := range keywords {
		slog.Info("searching keyword", slog.String("keyword", keyword))

		total := 0
		for page := 1; page <= cfg.MaxPages; page++ {
			slog.Debug("fetching page", slog.String("keyword", keyword), slog.Int("page", page))

			pageData, fetchErr := fetcher.Page(ctx, keyword, page)
			sleep(cfg.RequestDelay)
			if fetchErr != nil {
				// A failed page ends pagination for this keyword; no retry.
				slog.Warn("page fetch failed",
					slog.String("keyword", keyword),
					slog.Int("page", page),
					slog.Any("error", fetchErr),
				)
				break
			}

			rows := normalize.SearchRows(keyword, pageData)
			if len(rows) == 0 {
				slog.Info("no products on page", slog.String("keyword", keyword), slog.Int("page", page))
				break
			}

			if err := out.Write(rows); err != nil {
				return results, err
			}
			total += len(rows)
			metrics.AddRows("search", len(rows))

			if !pageData.HasNext() {
				break
			}
		}

		slog.Info("keyword complete", slog.String("keyword", keyword), slog.Int("rows", total))
		results = append(results, KeywordResult{Keyword: keyword, Rows: total})
	}

	return results, nil
}
