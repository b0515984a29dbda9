package config_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/srabbas1701/wealthlens/config"
)

func TestLoad_RequiresPGURL(t *testing.T) {
	t.Setenv("PG_URL", "")
	if _, err := config.Load(); err == nil {
		t.Error("expected error when PG_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost/wealthlens_test")
	t.Setenv("PORT", "")
	t.Setenv("RATE_MIN_PER_GRAM", "")
	t.Setenv("RATE_MAX_PER_GRAM", "")
	t.Setenv("SUSPICIOUS_DELTA_PCT", "")
	t.Setenv("CASCADE_WORKERS", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if !cfg.RateMinPerGram.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected default band floor 1000, got %s", cfg.RateMinPerGram)
	}
	if !cfg.RateMaxPerGram.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("expected default band ceiling 25000, got %s", cfg.RateMaxPerGram)
	}
	if !cfg.SuspiciousDeltaPct.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected default tolerance 20, got %s", cfg.SuspiciousDeltaPct)
	}
	if cfg.CascadeWorkers != 8 {
		t.Errorf("expected default 8 workers, got %d", cfg.CascadeWorkers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost/wealthlens_test")
	t.Setenv("RATE_MIN_PER_GRAM", "500")
	t.Setenv("RATE_MAX_PER_GRAM", "50000")
	t.Setenv("SUSPICIOUS_DELTA_PCT", "35.5")
	t.Setenv("CASCADE_WORKERS", "16")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.RateMinPerGram.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected 500, got %s", cfg.RateMinPerGram)
	}
	if !cfg.SuspiciousDeltaPct.Equal(decimal.RequireFromString("35.5")) {
		t.Errorf("expected 35.5, got %s", cfg.SuspiciousDeltaPct)
	}
	if cfg.CascadeWorkers != 16 {
		t.Errorf("expected 16 workers, got %d", cfg.CascadeWorkers)
	}
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost/wealthlens_test")
	t.Setenv("RATE_MIN_PER_GRAM", "cheap")
	if _, err := config.Load(); err == nil {
		t.Error("expected error for non-numeric threshold")
	}

	t.Setenv("RATE_MIN_PER_GRAM", "")
	t.Setenv("CASCADE_WORKERS", "-2")
	if _, err := config.Load(); err == nil {
		t.Error("expected error for negative worker count")
	}
}
