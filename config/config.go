package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL            string
	Port             string
	SchedulerKey     string
	IBJABaseURL      string
	MetalsDevBaseURL string
	MetalsDevAPIKey  string

	// Rate validation thresholds, in rupees per gram and percent.
	RateMinPerGram     decimal.Decimal
	RateMaxPerGram     decimal.Decimal
	SuspiciousDeltaPct decimal.Decimal

	CascadeWorkers int
}

// Load reads configuration from environment variables, with .env support for
// local development
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg := &Config{
		PGURL:            pgURL,
		Port:             port,
		SchedulerKey:     os.Getenv("SCHEDULER_KEY"),
		IBJABaseURL:      os.Getenv("IBJA_BASE_URL"),
		MetalsDevBaseURL: os.Getenv("METALS_DEV_BASE_URL"),
		MetalsDevAPIKey:  os.Getenv("METALS_DEV_API_KEY"),
	}

	var err error
	if cfg.RateMinPerGram, err = decimalEnv("RATE_MIN_PER_GRAM", "1000"); err != nil {
		return nil, err
	}
	if cfg.RateMaxPerGram, err = decimalEnv("RATE_MAX_PER_GRAM", "25000"); err != nil {
		return nil, err
	}
	if cfg.SuspiciousDeltaPct, err = decimalEnv("SUSPICIOUS_DELTA_PCT", "20"); err != nil {
		return nil, err
	}

	workers := os.Getenv("CASCADE_WORKERS")
	if workers == "" {
		cfg.CascadeWorkers = 8
	} else {
		n, err := strconv.Atoi(workers)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("CASCADE_WORKERS must be a positive integer, got %q", workers)
		}
		cfg.CascadeWorkers = n
	}

	return cfg, nil
}

func decimalEnv(name, fallback string) (decimal.Decimal, error) {
	raw := os.Getenv(name)
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number, got %q", name, raw)
	}
	return d, nil
}
