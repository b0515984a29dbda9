package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the container a user groups holdings under. CRUD for it lives
// outside this service; the pipeline only reads IDs and writes aggregates.
type Portfolio struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PortfolioAggregate is the derived rollup for one portfolio: total value
// across all holdings and the share sitting in gold. Owned exclusively by the
// cascade recalculator; recomputed whenever any contained holding revalues.
type PortfolioAggregate struct {
	PortfolioID    int64           `json:"portfolio_id"`
	TotalValue     decimal.Decimal `json:"total_value"`
	GoldValue      decimal.Decimal `json:"gold_value"`
	GoldPercentage decimal.Decimal `json:"gold_percentage"` // 0 when TotalValue is 0
	ComputedAt     time.Time       `json:"computed_at"`
}
