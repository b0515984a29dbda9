package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/srabbas1701/wealthlens/internal/models"
)

// HoldingStore is the holdings repository contract the cascade consumes.
type HoldingStore interface {
	ListByKinds(ctx context.Context, kinds []models.HoldingKind) ([]models.Holding, error)
	UpdateValue(ctx context.Context, holdingID int64, value decimal.Decimal, confidence models.ValueConfidence, valuedAt time.Time) error
}

// PortfolioStore is the portfolios repository contract the cascade consumes.
type PortfolioStore interface {
	ListAffected(ctx context.Context, holdingIDs []int64) ([]int64, error)
	SumHoldingValues(ctx context.Context, portfolioID int64) (total, gold decimal.Decimal, err error)
	UpdateAggregate(ctx context.Context, agg *models.PortfolioAggregate) error
}

// benchmarkKinds is the population the cascade revalues. ETFs are excluded:
// their value comes from the equity price feed.
var benchmarkKinds = []models.HoldingKind{
	models.KindSGB, models.KindPhysical, models.KindDigital,
}

// RecalcReport summarizes one cascade pass. Failures are per-item; the run
// never rolls back work that succeeded.
type RecalcReport struct {
	HoldingsUpdated   int
	HoldingsUnchanged int
	HoldingsFailed    int
	PortfoliosUpdated int
	Failures          []models.CascadeFailure
}

// CascadeService propagates a new benchmark rate through every dependent
// holding and portfolio aggregate.
type CascadeService struct {
	holdings   HoldingStore
	portfolios PortfolioStore
	workers    int
}

const defaultCascadeWorkers = 8

// NewCascadeService creates a new CascadeService with a bounded worker pool
func NewCascadeService(holdings HoldingStore, portfolios PortfolioStore, workers int) *CascadeService {
	if workers <= 0 {
		workers = defaultCascadeWorkers
	}
	return &CascadeService{
		holdings:   holdings,
		portfolios: portfolios,
		workers:    workers,
	}
}

// Recalculate runs the two-phase cascade for a new rate. Phase 1 revalues
// holdings concurrently — each is an independent row update — writing only
// values that actually changed and collecting per-holding failures without
// stopping the rest. The errgroup Wait is the barrier: no portfolio
// aggregate is recomputed until every holding write has finished, so phase 2
// re-sums from fully updated rows only.
func (s *CascadeService) Recalculate(ctx context.Context, rate *models.GoldRate) (*RecalcReport, error) {
	defer TrackTime("CascadeService.Recalculate", time.Now())

	holdings, err := s.holdings.ListByKinds(ctx, benchmarkKinds)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings for cascade: %w", err)
	}

	report := &RecalcReport{}
	now := time.Now().UTC()

	var mu sync.Mutex
	var updatedIDs []int64

	g := &errgroup.Group{}
	g.SetLimit(s.workers)
	for i := range holdings {
		h := holdings[i]
		g.Go(func() error {
			val, err := ValueHolding(ctx, &h, rate)
			if err != nil {
				mu.Lock()
				report.HoldingsFailed++
				report.Failures = append(report.Failures, models.CascadeFailure{
					HoldingID: h.ID, PortfolioID: h.PortfolioID, Reason: err.Error(),
				})
				mu.Unlock()
				AddWarning(ctx, models.Warning{
					Code:    models.WarnHoldingSkipped,
					Message: fmt.Sprintf("holding %d skipped: %v", h.ID, err),
				})
				log.Errorf("cascade: failed to value holding %d: %v", h.ID, err)
				return nil
			}

			if val.Amount.Equal(h.CurrentValue) && val.Confidence == h.Confidence {
				mu.Lock()
				report.HoldingsUnchanged++
				mu.Unlock()
				return nil
			}

			if err := s.holdings.UpdateValue(ctx, h.ID, val.Amount, val.Confidence, now); err != nil {
				mu.Lock()
				report.HoldingsFailed++
				report.Failures = append(report.Failures, models.CascadeFailure{
					HoldingID: h.ID, PortfolioID: h.PortfolioID, Reason: err.Error(),
				})
				mu.Unlock()
				AddWarning(ctx, models.Warning{
					Code:    models.WarnHoldingSkipped,
					Message: fmt.Sprintf("holding %d skipped: %v", h.ID, err),
				})
				log.Errorf("cascade: failed to write holding %d: %v", h.ID, err)
				return nil
			}

			mu.Lock()
			report.HoldingsUpdated++
			updatedIDs = append(updatedIDs, h.ID)
			mu.Unlock()
			return nil
		})
	}
	// workers never return errors; Wait is purely the phase barrier
	_ = g.Wait()

	if len(updatedIDs) == 0 {
		return report, nil
	}

	portfolioIDs, err := s.portfolios.ListAffected(ctx, updatedIDs)
	if err != nil {
		return report, fmt.Errorf("failed to resolve affected portfolios: %w", err)
	}

	for _, pid := range portfolioIDs {
		if err := s.reaggregate(ctx, pid, now); err != nil {
			report.Failures = append(report.Failures, models.CascadeFailure{
				PortfolioID: pid, Reason: err.Error(),
			})
			AddWarning(ctx, models.Warning{
				Code:    models.WarnAggregateSkipped,
				Message: fmt.Sprintf("portfolio %d aggregate not recomputed: %v", pid, err),
			})
			log.Errorf("cascade: failed to reaggregate portfolio %d: %v", pid, err)
			continue
		}
		report.PortfoliosUpdated++
	}

	return report, nil
}

// reaggregate re-sums one portfolio from its (now updated) holdings and
// writes the rollup. Gold percentage is defined as 0 for an empty portfolio.
func (s *CascadeService) reaggregate(ctx context.Context, portfolioID int64, now time.Time) error {
	total, gold, err := s.portfolios.SumHoldingValues(ctx, portfolioID)
	if err != nil {
		return err
	}

	pct := decimal.Zero
	if total.IsPositive() {
		pct = gold.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return s.portfolios.UpdateAggregate(ctx, &models.PortfolioAggregate{
		PortfolioID:    portfolioID,
		TotalValue:     total,
		GoldValue:      gold,
		GoldPercentage: pct,
		ComputedAt:     now,
	})
}
