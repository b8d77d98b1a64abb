package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"product-export/config"

	"github.com/jarcoal/httpmock"
)

func detailTestConfig() *config.DetailConfig {
	cfg := config.DefaultDetailConfig()
	cfg.APIURL = "https://api.example.test/getter/"
	cfg.APIKey = "test-key"
	cfg.Timeout = 2 * time.Second
	return cfg
}

func searchTestConfig() *config.SearchConfig {
	cfg := config.DefaultSearchConfig()
	cfg.APIURL = "https://api.example.test/search"
	cfg.APIKey = "test-key"
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestDetailClientProduct(t *testing.T) {
	cfg := detailTestConfig()
	client := NewDetailClient(cfg, NewMetrics())
	httpmock.ActivateNonDefault(client.http.GetClient())
	defer httpmock.DeactivateAndReset()

	body := `{
		"detail": {
			"name": "USB-C Cable",
			"brand": "Acme",
			"price": 12.99,
			"total_ratings": 100,
			"in_stock": true
		},
		"remaining_credits": 874
	}`
	httpmock.RegisterResponder("GET", cfg.APIURL, func(req *http.Request) (*http.Response, error) {
		query := req.URL.Query()
		if got := query.Get("platform"); got != "amazon_detail" {
			t.Fatalf("platform = %q", got)
		}
		if got := query.Get("url"); got != "https://www.amazon.com/dp/B000123/" {
			t.Fatalf("url param = %q", got)
		}
		if got := query.Get("api_key"); got != "test-key" {
			t.Fatalf("api_key = %q", got)
		}
		return httpmock.NewStringResponse(200, body), nil
	})

	result, err := client.Product(context.Background(), "B000123")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if result.Detail.Name != "USB-C Cable" {
		t.Fatalf("name = %q", result.Detail.Name)
	}
	if result.RemainingCredits == nil || *result.RemainingCredits != 874 {
		t.Fatalf("remaining credits = %v, want 874", result.RemainingCredits)
	}
}

func TestDetailClientAPIError(t *testing.T) {
	cfg := detailTestConfig()
	client := NewDetailClient(cfg, NewMetrics())
	httpmock.ActivateNonDefault(client.http.GetClient())
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			name:        "carried message",
			body:        `{"message": "Invalid API key"}`,
			wantMessage: "Invalid API key",
		},
		{
			name:        "no message",
			body:        `{"success": false}`,
			wantMessage: "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("GET", cfg.APIURL,
				httpmock.NewStringResponder(200, tt.body))

			_, err := client.Product(context.Background(), "B000123")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Message != tt.wantMessage {
				t.Fatalf("message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestDetailClientMalformedBody(t *testing.T) {
	cfg := detailTestConfig()
	client := NewDetailClient(cfg, NewMetrics())
	httpmock.ActivateNonDefault(client.http.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", cfg.APIURL,
		httpmock.NewStringResponder(502, "<html>bad gateway</html>"))

	if _, err := client.Product(context.Background(), "B000123"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSearchClientPage(t *testing.T) {
	cfg := searchTestConfig()
	client := NewSearchClient(cfg, NewMetrics())
	httpmock.ActivateNonDefault(client.http.GetClient())
	defer httpmock.DeactivateAndReset()

	body := `{
		"products": [
			{"title": "Claw Hammer", "price": 24.97},
			{"title": "Sledge Hammer", "price": 54.00}
		],
		"serpapi_pagination": {"next": "https://api.example.test/search?nao=24"}
	}`
	httpmock.RegisterResponder("GET", cfg.APIURL, func(req *http.Request) (*http.Response, error) {
		query := req.URL.Query()
		if got := query.Get("engine"); got != "home_depot" {
			t.Fatalf("engine = %q", got)
		}
		if got := query.Get("q"); got != "hammer" {
			t.Fatalf("q = %q", got)
		}
		if got := query.Get("nao"); got != "24" {
			t.Fatalf("nao = %q, want offset for page 2", got)
		}
		if got := query.Get("page_size"); got != "24" {
			t.Fatalf("page_size = %q", got)
		}
		return httpmock.NewStringResponse(200, body), nil
	})

	page, err := client.Page(context.Background(), "hammer", 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("products = %d, want 2", len(page.Products))
	}
	if !page.HasNext() {
		t.Fatalf("expected next-page indicator")
	}
}

func TestSearchClientFirstPageOffset(t *testing.T) {
	cfg := searchTestConfig()
	client := NewSearchClient(cfg, NewMetrics())
	httpmock.ActivateNonDefault(client.http.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", cfg.APIURL, func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("nao"); got != "0" {
			t.Fatalf("nao = %q, want 0 for page 1", got)
		}
		return httpmock.NewStringResponse(200, `{"products": []}`), nil
	})

	page, err := client.Page(context.Background(), "hammer", 1)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page.Products) != 0 {
		t.Fatalf("products = %d, want 0", len(page.Products))
	}
	if page.HasNext() {
		t.Fatalf("no next-page indicator expected")
	}
}

func TestSearchClientAPIError(t *testing.T) {
	cfg := searchTestConfig()
	client := NewSearchClient(cfg, NewMetrics())
	httpmock.ActivateNonDefault(client.http.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", cfg.APIURL,
		httpmock.NewStringResponder(200, `{"error": "Missing query"}`))

	_, err := client.Page(context.Background(), "", 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Missing query" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestErrorTypeLabel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "unknown"},
		{name: "api error", err: &APIError{Message: "nope"}, expected: "api_error"},
		{name: "timeout", err: ErrTimeout{Err: context.DeadlineExceeded}, expected: "timeout"},
		{name: "rate limited", err: ErrRateLimited{Err: errors.New("429")}, expected: "rate_limited"},
		{name: "other", err: errors.New("some other error"), expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorTypeLabel(tt.err); got != tt.expected {
				t.Fatalf("label = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClassifyErrorStatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
	}

	for _, tt := range tests {
		if got := ErrorTypeLabel(classifyError(errors.New("decode failed"), tt.status)); got != tt.expected {
			t.Fatalf("status %d classified as %q, want %q", tt.status, got, tt.expected)
		}
	}
}
