package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingKind is the closed set of gold holding types. Valuation dispatches
// on kind; adding a kind means adding a valuer, not another switch arm
// scattered across files.
type HoldingKind string

const (
	KindSGB      HoldingKind = "SGB"      // sovereign gold bond, grams at 24k reference
	KindPhysical HoldingKind = "PHYSICAL" // jewellery/coins, net weight at declared purity
	KindDigital  HoldingKind = "DIGITAL"  // digital gold, grams at 24k reference
	KindGoldETF  HoldingKind = "ETF"      // exchange traded, valued by market feed only
)

// BenchmarkValued reports whether holdings of this kind are revalued from the
// canonical gold rate. ETF units get their price from the equity feed; running
// them through the benchmark calculator is a caller error, not a fallback.
func (k HoldingKind) BenchmarkValued() bool {
	switch k {
	case KindSGB, KindPhysical, KindDigital:
		return true
	}
	return false
}

// Purity is the declared fineness of a physical holding.
type Purity string

const (
	Purity24K Purity = "24K"
	Purity22K Purity = "22K"
)

// ValueConfidence qualifies a holding's current value.
type ValueConfidence string

const (
	// ConfidenceFresh: computed from the rate of the current run.
	ConfidenceFresh ValueConfidence = "fresh"
	// ConfidenceStale: no usable rate; value is the last invested value.
	ConfidenceStale ValueConfidence = "stale"
	// ConfidenceLow: attributes were incomplete (e.g. missing net weight);
	// value fell back to invested value.
	ConfidenceLow ValueConfidence = "low_confidence"
)

// Holding is one gold position inside a portfolio.
//
// Quantity is grams for SGB/digital and units for ETFs. NetWeight is the
// metal-only weight of a physical piece; GrossWeight includes stones and is
// never used for valuation. CurrentValue and ValueConfidence are derived
// fields owned by the cascade recalculator — nothing else writes them.
type Holding struct {
	ID            int64            `json:"id"`
	PortfolioID   int64            `json:"portfolio_id"`
	Kind          HoldingKind      `json:"kind"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Purity        Purity           `json:"purity,omitempty"`
	NetWeight     *decimal.Decimal `json:"net_weight,omitempty"`   // grams
	GrossWeight   *decimal.Decimal `json:"gross_weight,omitempty"` // grams
	InvestedValue decimal.Decimal  `json:"invested_value"`
	CurrentValue  decimal.Decimal  `json:"current_value"`
	Confidence    ValueConfidence  `json:"value_confidence"`
	ValuedAt      *time.Time       `json:"valued_at,omitempty"`
}
