// Package fetch implements the API clients for the two export pipelines,
// together with their retry policy, error taxonomy, and metrics.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"product-export/config"
	"product-export/models"

	"github.com/go-resty/resty/v2"
)

// productPageURL is the canonical product page addressed by one identifier;
// the detail API takes the page URL rather than the bare identifier.
const productPageURL = "https://www.amazon.com/dp/%s/"

// DetailResult is one successful detail fetch. RemainingCredits is the API
// quota counter when the upstream surfaced one.
type DetailResult struct {
	Detail           *models.ProductDetail
	RemainingCredits *int
}

type detailEnvelope struct {
	Detail           *models.ProductDetail `json:"detail"`
	Message          string                `json:"message"`
	RemainingCredits *int                  `json:"remaining_credits"`
}

// DetailClient fetches product details from the getter API.
type DetailClient struct {
	http    *resty.Client
	apiURL  string
	apiKey  string
	metrics *Metrics
}

// NewDetailClient builds a detail client from cfg.
func NewDetailClient(cfg *config.DetailConfig, metrics *Metrics) *DetailClient {
	return &DetailClient{
		http:    resty.New().SetTimeout(cfg.Timeout),
		apiURL:  cfg.APIURL,
		apiKey:  cfg.APIKey,
		metrics: metrics,
	}
}

// Product fetches the detail payload for one product identifier. A response
// without a detail object yields an *APIError carrying the upstream message.
func (c *DetailClient) Product(ctx context.Context, asin string) (*DetailResult, error) {
	c.metrics.IncRequest("detail")
	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"platform": "amazon_detail",
			"url":      fmt.Sprintf(productPageURL, asin),
			"api_key":  c.apiKey,
		}).
		Get(c.apiURL)
	c.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		classified := classifyError(err, 0)
		c.metrics.IncError(ErrorTypeLabel(classified))
		return nil, fmt.Errorf("fetch product %s: %w", asin, classified)
	}

	var env detailEnvelope
	if err := json.Unmarshal(res.Body(), &env); err != nil {
		classified := classifyError(err, res.StatusCode())
		c.metrics.IncError(ErrorTypeLabel(classified))
		return nil, fmt.Errorf("decode product %s: %w", asin, classified)
	}
	if env.Detail == nil {
		message := env.Message
		if message == "" {
			message = "unknown error"
		}
		apiErr := &APIError{Message: message}
		c.metrics.IncError(ErrorTypeLabel(apiErr))
		return nil, apiErr
	}

	return &DetailResult{
		Detail:           env.Detail,
		RemainingCredits: env.RemainingCredits,
	}, nil
}

// SearchClient fetches paginated keyword results from the search proxy.
type SearchClient struct {
	http     *resty.Client
	apiURL   string
	apiKey   string
	engine   string
	pageSize int
	metrics  *Metrics
}

// NewSearchClient builds a search client from cfg.
func NewSearchClient(cfg *config.SearchConfig, metrics *Metrics) *SearchClient {
	return &SearchClient{
		http:     resty.New().SetTimeout(cfg.Timeout),
		apiURL:   cfg.APIURL,
		apiKey:   cfg.APIKey,
		engine:   cfg.Engine,
		pageSize: cfg.PageSize,
		metrics:  metrics,
	}
}

// Page fetches one page of results for a keyword. Pages are 1-based; the
// proxy's nao offset for page N is (N-1) times the page size.
func (c *SearchClient) Page(ctx context.Context, keyword string, page int) (*models.SearchPage, error) {
	if page < 1 {
		page = 1
	}
	nao := (page - 1) * c.pageSize

	c.metrics.IncRequest("search")
	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":    c.engine,
			"q":         keyword,
			"api_key":   c.apiKey,
			"nao":       strconv.Itoa(nao),
			"page_size": strconv.Itoa(c.pageSize),
		}).
		Get(c.apiURL)
	c.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		classified := classifyError(err, 0)
		c.metrics.IncError(ErrorTypeLabel(classified))
		return nil, fmt.Errorf("search %q page %d: %w", keyword, page, classified)
	}

	var result models.SearchPage
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		classified := classifyError(err, res.StatusCode())
		c.metrics.IncError(ErrorTypeLabel(classified))
		return nil, fmt.Errorf("decode search %q page %d: %w", keyword, page, classified)
	}
	if result.Error != "" {
		apiErr := &APIError{Message: result.Error}
		c.metrics.IncError(ErrorTypeLabel(apiErr))
		return nil, apiErr
	}

	return &result, nil
}
