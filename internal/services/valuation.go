package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/srabbas1701/wealthlens/internal/models"
)

// ErrMarketPriced is returned when the benchmark calculator is invoked on a
// holding kind that is valued by the equity market feed. This is a caller
// error, never a fallback: silently substituting the benchmark rate would
// produce a wrong but plausible number.
var ErrMarketPriced = errors.New("holding kind is valued by the market price feed, not the benchmark rate")

// Valuation is the outcome of valuing one holding.
type Valuation struct {
	Amount     decimal.Decimal
	Confidence models.ValueConfidence
}

// valuer is the per-kind valuation contract. One implementation per
// HoldingKind variant; the kind set is closed.
type valuer interface {
	value(ctx context.Context, h *models.Holding, rate *models.GoldRate) (Valuation, error)
}

var valuers = map[models.HoldingKind]valuer{
	models.KindSGB:      gramsAt24kValuer{},
	models.KindDigital:  gramsAt24kValuer{},
	models.KindPhysical: physicalValuer{},
	models.KindGoldETF:  marketPricedValuer{},
}

// ValueHolding computes a holding's current value from the canonical rate.
// It always produces a number for benchmark-valued kinds: with no rate at all
// the invested value is returned flagged stale. Market-priced kinds are
// refused outright.
func ValueHolding(ctx context.Context, h *models.Holding, rate *models.GoldRate) (Valuation, error) {
	v, ok := valuers[h.Kind]
	if !ok {
		return Valuation{}, fmt.Errorf("unknown holding kind %q for holding %d", h.Kind, h.ID)
	}
	if rate == nil && h.Kind.BenchmarkValued() {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnStaleValuation,
			Message: fmt.Sprintf("holding %d valued from invested value, no benchmark rate available", h.ID),
		})
		return Valuation{Amount: h.InvestedValue, Confidence: models.ConfidenceStale}, nil
	}
	return v.value(ctx, h, rate)
}

// gramsAt24kValuer covers SGB and digital gold: both are denominated in
// grams of pure gold and valued at the 24k reference rate.
type gramsAt24kValuer struct{}

func (gramsAt24kValuer) value(_ context.Context, h *models.Holding, rate *models.GoldRate) (Valuation, error) {
	amount := h.Quantity.Mul(rate.Price24K).Round(2)
	return Valuation{Amount: amount, Confidence: models.ConfidenceFresh}, nil
}

// physicalValuer values jewellery and coins from net metal weight at the
// declared purity. Gross weight includes stones and wastage and is never a
// valuation input; a holding recorded without net weight cannot be valued
// from the benchmark and falls back to invested value at low confidence.
type physicalValuer struct{}

func (physicalValuer) value(ctx context.Context, h *models.Holding, rate *models.GoldRate) (Valuation, error) {
	if h.NetWeight == nil || !h.NetWeight.IsPositive() {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnLowConfidence,
			Message: fmt.Sprintf("holding %d has no net weight, valued from invested value", h.ID),
		})
		return Valuation{Amount: h.InvestedValue, Confidence: models.ConfidenceLow}, nil
	}

	var perGram decimal.Decimal
	switch h.Purity {
	case models.Purity24K:
		perGram = rate.Price24K
	case models.Purity22K:
		perGram = rate.Price22K
	default:
		AddWarning(ctx, models.Warning{
			Code:    models.WarnLowConfidence,
			Message: fmt.Sprintf("holding %d has unsupported purity %q, valued from invested value", h.ID, h.Purity),
		})
		return Valuation{Amount: h.InvestedValue, Confidence: models.ConfidenceLow}, nil
	}

	amount := h.NetWeight.Mul(perGram).Round(2)
	return Valuation{Amount: amount, Confidence: models.ConfidenceFresh}, nil
}

// marketPricedValuer is the explicit "not applicable" variant for ETFs.
type marketPricedValuer struct{}

func (marketPricedValuer) value(_ context.Context, h *models.Holding, _ *models.GoldRate) (Valuation, error) {
	return Valuation{}, fmt.Errorf("holding %d (%s): %w", h.ID, h.Kind, ErrMarketPriced)
}
