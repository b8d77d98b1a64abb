package config

import (
	"strings"
	"testing"
	"time"
)

func validDetailConfig() *DetailConfig {
	cfg := DefaultDetailConfig()
	cfg.APIKey = "test-key"
	return cfg
}

func TestDetailConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DetailConfig)
		wantErr string
	}{
		{
			name:    "missing api key",
			mutate:  func(cfg *DetailConfig) { cfg.APIKey = "" },
			wantErr: "api key",
		},
		{
			name:    "empty api url",
			mutate:  func(cfg *DetailConfig) { cfg.APIURL = "" },
			wantErr: "API URL",
		},
		{
			name:    "api url without host",
			mutate:  func(cfg *DetailConfig) { cfg.APIURL = "http://" },
			wantErr: "API URL",
		},
		{
			name:    "empty input file",
			mutate:  func(cfg *DetailConfig) { cfg.InputFile = "" },
			wantErr: "input file",
		},
		{
			name:    "negative limit",
			mutate:  func(cfg *DetailConfig) { cfg.Limit = -1 },
			wantErr: "limit",
		},
		{
			name:    "zero attempts",
			mutate:  func(cfg *DetailConfig) { cfg.MaxAttempts = 0 },
			wantErr: "max attempts",
		},
		{
			name:    "negative request delay",
			mutate:  func(cfg *DetailConfig) { cfg.RequestDelay = -time.Second },
			wantErr: "request delay",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *DetailConfig) { cfg.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "zero flush interval",
			mutate:  func(cfg *DetailConfig) { cfg.FlushEvery = 0 },
			wantErr: "flush interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDetailConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDetailConfigValidateDefaults(t *testing.T) {
	if err := validDetailConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}

func TestSearchConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SearchConfig)
		wantErr string
	}{
		{
			name:    "missing api key",
			mutate:  func(cfg *SearchConfig) { cfg.APIKey = "" },
			wantErr: "api key",
		},
		{
			name:    "empty engine",
			mutate:  func(cfg *SearchConfig) { cfg.Engine = "" },
			wantErr: "engine",
		},
		{
			name:    "zero page size",
			mutate:  func(cfg *SearchConfig) { cfg.PageSize = 0 },
			wantErr: "page size",
		},
		{
			name:    "zero max pages",
			mutate:  func(cfg *SearchConfig) { cfg.MaxPages = 0 },
			wantErr: "max pages",
		},
		{
			name:    "empty output file",
			mutate:  func(cfg *SearchConfig) { cfg.OutputFile = "" },
			wantErr: "output file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSearchConfig()
			cfg.APIKey = "test-key"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDetailOutputFile(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC)
	got := DetailOutputFile(now)
	want := "amazon_product_details_20250309_1430.csv"
	if got != want {
		t.Fatalf("output file = %q, want %q", got, want)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("EXPORT_TEST_INT", "42")
	value, ok, err := EnvInt("EXPORT_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (42, true, nil)", value, ok, err)
	}

	t.Setenv("EXPORT_TEST_INT", "nope")
	if _, _, err := EnvInt("EXPORT_TEST_INT"); err == nil {
		t.Fatalf("expected parse error")
	}

	if _, ok, err := EnvInt("EXPORT_TEST_INT_UNSET"); ok || err != nil {
		t.Fatalf("unset var should report not ok")
	}
}
