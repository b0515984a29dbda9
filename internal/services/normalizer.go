package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/srabbas1701/wealthlens/internal/goldrate"
	"github.com/srabbas1701/wealthlens/internal/models"
	"github.com/srabbas1701/wealthlens/internal/util"
)

// purity22kFactor converts a 999-fineness price to 916 when the source only
// publishes pure gold (22/24 carat mass fraction, the convention jewellers
// quote against).
var purity22kFactor = decimal.NewFromFloat(0.916)

// NormalizerConfig carries the validation thresholds. The band catches
// wrong-currency and wrong-unit quotes, not market moves; the delta tolerance
// only flags, it never rejects. Both are hand-picked operational constants,
// so they live in config rather than code.
type NormalizerConfig struct {
	MinPerGram         decimal.Decimal // sanity band lower bound, ₹/gram
	MaxPerGram         decimal.Decimal // sanity band upper bound, ₹/gram
	SuspiciousDeltaPct decimal.Decimal // day-over-day percent change that flags a rate
}

// DefaultNormalizerConfig returns the thresholds used when none are configured.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		MinPerGram:         decimal.NewFromInt(1000),
		MaxPerGram:         decimal.NewFromInt(25000),
		SuspiciousDeltaPct: decimal.NewFromInt(20),
	}
}

// RejectionError reports a quote that failed validation. It is terminal for
// the run: nothing is persisted and the last good rate stays authoritative.
type RejectionError struct {
	Value  decimal.Decimal
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("rate rejected: %s (normalized value %s/gram)", e.Reason, e.Value.String())
}

// Normalizer converts raw provider quotes into the canonical per-gram rate
// and validates them against the previous accepted rate.
type Normalizer struct {
	cfg NormalizerConfig
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize converts raw into rupees per gram using the conversion factor the
// adapter declared, range-checks it, and compares against prev for a
// suspicious day-over-day jump. A jump flags the rate and proceeds; only an
// out-of-band value rejects. The returned rate carries the source tag so the
// read path can label proxy rates as indicative.
func (n *Normalizer) Normalize(ctx context.Context, raw *goldrate.RawQuote, prev *models.GoldRate) (*models.GoldRate, error) {
	if raw.GramsPerUnit <= 0 {
		return nil, &RejectionError{Value: raw.Price24K, Reason: "source did not declare a unit convention"}
	}

	grams := decimal.NewFromInt(raw.GramsPerUnit)
	price24 := raw.Price24K.Div(grams)

	var price22 decimal.Decimal
	if raw.Price22K.IsZero() {
		price22 = price24.Mul(purity22kFactor).Round(2)
	} else {
		price22 = raw.Price22K.Div(grams)
	}

	if price24.LessThan(n.cfg.MinPerGram) || price24.GreaterThan(n.cfg.MaxPerGram) {
		return nil, &RejectionError{
			Value:  price24,
			Reason: fmt.Sprintf("outside sanity band %s–%s", n.cfg.MinPerGram.String(), n.cfg.MaxPerGram.String()),
		}
	}

	suspicious := false
	if prev != nil && prev.Price24K.IsPositive() {
		deltaPct := price24.Sub(prev.Price24K).Abs().
			Div(prev.Price24K).
			Mul(decimal.NewFromInt(100))
		if deltaPct.GreaterThan(n.cfg.SuspiciousDeltaPct) {
			suspicious = true
			msg := fmt.Sprintf("24k rate moved %s%% day-over-day (%s → %s)",
				deltaPct.Round(1).String(), prev.Price24K.String(), price24.String())
			log.Warnf("suspicious gold rate: %s", msg)
			AddWarning(ctx, models.Warning{Code: models.WarnSuspiciousJump, Message: msg})
		}
	}

	return &models.GoldRate{
		RateDate:   util.RateDate(raw.Date),
		Session:    raw.Session,
		Price24K:   price24,
		Price22K:   price22,
		Source:     raw.Source,
		Suspicious: suspicious,
		CapturedAt: time.Now().UTC(),
	}, nil
}
