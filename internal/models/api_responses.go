package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefreshResult is the structured outcome of one pipeline run, returned to
// the scheduler that triggered it.
type RefreshResult struct {
	RunID             uuid.UUID        `json:"run_id"`
	AcceptedSource    RateSource       `json:"accepted_source"`
	RateDate          string           `json:"rate_date"` // YYYY-MM-DD
	Price24K          decimal.Decimal  `json:"price_24k"`
	Price22K          decimal.Decimal  `json:"price_22k"`
	Suspicious        bool             `json:"suspicious"`
	HoldingsUpdated   int              `json:"holdings_updated"`
	HoldingsFailed    int              `json:"holdings_failed"`
	PortfoliosUpdated int              `json:"portfolios_updated"`
	Failures          []CascadeFailure `json:"failures,omitempty"`
	Warnings          []Warning        `json:"warnings,omitempty"`
}

// CascadeFailure identifies one holding or portfolio the cascade could not
// update. The run as a whole still succeeds for the persisted rate.
type CascadeFailure struct {
	HoldingID   int64  `json:"holding_id,omitempty"`
	PortfolioID int64  `json:"portfolio_id,omitempty"`
	Reason      string `json:"reason"`
}

// LatestRateResponse is the read path for consumers of the benchmark rate.
// Indicative marks a proxy-sourced rate; Stale marks a rate older than the
// current IST date, which the UI should label with its original date rather
// than presenting as current.
type LatestRateResponse struct {
	Rate       GoldRate  `json:"rate"`
	Indicative bool      `json:"indicative"`
	Stale      bool      `json:"stale"`
	NextUpdate time.Time `json:"next_update"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
