// Package config holds the per-pipeline configuration and credential loading.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// DetailConfig configures the product-detail export pipeline.
type DetailConfig struct {
	APIURL       string
	APIKey       string
	InputFile    string
	OutputFile   string
	Limit        int // 0 means process the full input list
	MaxAttempts  int // attempts per key, 1 means no retry
	RetryDelay   time.Duration
	RequestDelay time.Duration
	Timeout      time.Duration
	FlushEvery   int
	CacheSize    int
	MetricsAddr  string
	Verbose      bool
}

// DefaultDetailConfig returns the defaults matching the production run.
func DefaultDetailConfig() *DetailConfig {
	return &DetailConfig{
		APIURL:       "https://data.unwrangle.com/api/getter/",
		InputFile:    "cable_asin_list.txt",
		OutputFile:   DetailOutputFile(time.Now()),
		Limit:        0,
		MaxAttempts:  1,
		RetryDelay:   time.Second,
		RequestDelay: time.Second,
		Timeout:      30 * time.Second,
		FlushEvery:   10,
		CacheSize:    256,
		MetricsAddr:  "",
		Verbose:      false,
	}
}

// DetailOutputFile derives the timestamped output name for one run.
func DetailOutputFile(now time.Time) string {
	return fmt.Sprintf("amazon_product_details_%s.csv", now.Format("20060102_1504"))
}

// Validate ensures all detail configuration values are coherent.
func (c *DetailConfig) Validate() error {
	if err := validateAPIURL(c.APIURL); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}
	if c.InputFile == "" {
		return fmt.Errorf("input file cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FlushEvery <= 0 {
		return fmt.Errorf("flush interval must be positive")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	return nil
}

// SearchConfig configures the keyword-search export pipeline.
type SearchConfig struct {
	APIURL       string
	APIKey       string
	Engine       string
	InputFile    string
	OutputFile   string
	Limit        int // 0 means process every keyword
	PageSize     int
	MaxPages     int
	RequestDelay time.Duration
	Timeout      time.Duration
	MetricsAddr  string
	Verbose      bool
}

// DefaultSearchConfig returns the defaults matching the production run.
func DefaultSearchConfig() *SearchConfig {
	return &SearchConfig{
		APIURL:       "https://serpapi.com/search",
		Engine:       "home_depot",
		InputFile:    "homedepot_search_keywords.txt",
		OutputFile:   "homedepot_search_results.csv",
		Limit:        0,
		PageSize:     24,
		MaxPages:     3,
		RequestDelay: time.Second,
		Timeout:      30 * time.Second,
		MetricsAddr:  "",
		Verbose:      false,
	}
}

// Validate ensures all search configuration values are coherent.
func (c *SearchConfig) Validate() error {
	if err := validateAPIURL(c.APIURL); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}
	if c.Engine == "" {
		return fmt.Errorf("engine cannot be empty")
	}
	if c.InputFile == "" {
		return fmt.Errorf("input file cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func validateAPIURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("API URL cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("API URL must include a host")
	}
	return nil
}

// EnvString reads a string environment override.
func EnvString(key string) (string, bool) {
	value := os.Getenv(key)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment override.
func EnvInt(key string) (int, bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, true, nil
}
