package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/srabbas1701/wealthlens/internal/cache"
	"github.com/srabbas1701/wealthlens/internal/goldrate"
	"github.com/srabbas1701/wealthlens/internal/models"
)

// ErrAllSourcesUnavailable is terminal for a run: the pipeline never invents
// a price. Consumers should keep serving the last persisted rate, labeled
// stale.
var ErrAllSourcesUnavailable = errors.New("all rate sources unavailable")

// RunState is the orchestrator's position in one refresh run.
type RunState string

const (
	StateIdle              RunState = "idle"
	StateFetchingPrimary   RunState = "fetching_primary"
	StateFetchingSecondary RunState = "fetching_secondary"
	StateValidating        RunState = "validating"
	StatePersisting        RunState = "persisting"
	StateCascading         RunState = "cascading"
	StateDone              RunState = "done"
	StateFailed            RunState = "failed"
)

// RateStore is the rate persistence contract the pipeline consumes.
type RateStore interface {
	Upsert(ctx context.Context, rate *models.GoldRate) error
	Latest(ctx context.Context) (*models.GoldRate, error)
}

// PipelineService sequences acquire → validate → persist → cascade for one
// scheduled run. Sources are an ordered list tried by priority; the first
// adapter is authoritative, the rest are proxies. Adding a provider means
// appending to the list.
type PipelineService struct {
	sources      []goldrate.Source
	normalizer   *Normalizer
	rates        RateStore
	cascade      *CascadeService
	memCache     *cache.MemoryCache
	fetchTimeout time.Duration
}

const defaultFetchTimeout = 20 * time.Second

// NewPipelineService creates a new PipelineService
func NewPipelineService(sources []goldrate.Source, normalizer *Normalizer, rates RateStore, cascade *CascadeService, memCache *cache.MemoryCache) *PipelineService {
	return &PipelineService{
		sources:      sources,
		normalizer:   normalizer,
		rates:        rates,
		cascade:      cascade,
		memCache:     memCache,
		fetchTimeout: defaultFetchTimeout,
	}
}

// Run executes one pipeline pass. Primary-source failure is not an error; it
// moves the run to the next source. Validation rejection and an exhausted
// source list are terminal with nothing persisted. Cascade failures after a
// successful persist are partial success: the rate stays persisted and the
// failures are reported in the result.
func (s *PipelineService) Run(ctx context.Context, session models.Session) (*models.RefreshResult, error) {
	defer TrackTime("PipelineService.Run", time.Now())

	runID := uuid.New()
	logger := log.WithFields(log.Fields{"run_id": runID, "session": session})
	ctx, wc := NewWarningContext(ctx)

	state := StateIdle

	// acquire: sources in priority order, sequentially — the secondary is a
	// lower-trust fallback, not a latency race
	var raw *goldrate.RawQuote
	for i, src := range s.sources {
		if i == 0 {
			state = s.transition(logger, state, StateFetchingPrimary)
		} else {
			state = s.transition(logger, state, StateFetchingSecondary)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		quote, err := src.Fetch(fetchCtx, session)
		cancel()
		if err != nil {
			// timeout and unavailable are the same thing here: move on
			logger.Warnf("source %s unavailable: %v", src.Name(), err)
			continue
		}
		raw = quote
		break
	}
	if raw == nil {
		s.transition(logger, state, StateFailed)
		return nil, ErrAllSourcesUnavailable
	}

	state = s.transition(logger, state, StateValidating)

	prev, err := s.rates.Latest(ctx)
	if err != nil {
		// day-over-day check degrades to absent; the band still applies
		logger.Warnf("could not load previous rate for delta check: %v", err)
		prev = nil
	}

	rate, err := s.normalizer.Normalize(ctx, raw, prev)
	if err != nil {
		s.transition(logger, state, StateFailed)
		return nil, err
	}
	if !rate.Source.Authoritative() {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnProxySource,
			Message: fmt.Sprintf("rate accepted from proxy source %s, values are indicative", rate.Source),
		})
	}

	state = s.transition(logger, state, StatePersisting)
	if err := s.rates.Upsert(ctx, rate); err != nil {
		s.transition(logger, state, StateFailed)
		return nil, err
	}
	if s.memCache != nil {
		s.memCache.Invalidate()
	}

	state = s.transition(logger, state, StateCascading)
	result := &models.RefreshResult{
		RunID:          runID,
		AcceptedSource: rate.Source,
		RateDate:       rate.RateDate.Format("2006-01-02"),
		Price24K:       rate.Price24K,
		Price22K:       rate.Price22K,
		Suspicious:     rate.Suspicious,
	}

	report, err := s.cascade.Recalculate(ctx, rate)
	if report != nil {
		result.HoldingsUpdated = report.HoldingsUpdated
		result.HoldingsFailed = report.HoldingsFailed
		result.PortfoliosUpdated = report.PortfoliosUpdated
		result.Failures = report.Failures
	}
	if err != nil {
		// the rate is persisted; report partial success rather than rolling back
		logger.Errorf("cascade incomplete: %v", err)
		result.Failures = append(result.Failures, models.CascadeFailure{Reason: err.Error()})
	}

	s.transition(logger, state, StateDone)
	result.Warnings = wc.GetWarnings()

	logger.Infof("pipeline run complete: source=%s 24k=%s holdings=%d/%d portfolios=%d",
		result.AcceptedSource, result.Price24K.String(),
		result.HoldingsUpdated, result.HoldingsUpdated+result.HoldingsFailed,
		result.PortfoliosUpdated)
	return result, nil
}

func (s *PipelineService) transition(logger *log.Entry, from, to RunState) RunState {
	logger.Debugf("pipeline state %s → %s", from, to)
	return to
}
