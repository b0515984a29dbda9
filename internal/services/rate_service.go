package services

import (
	"context"
	"errors"
	"time"

	"github.com/srabbas1701/wealthlens/internal/cache"
	"github.com/srabbas1701/wealthlens/internal/models"
	"github.com/srabbas1701/wealthlens/internal/util"
)

// ErrNoRateAvailable means no benchmark rate has ever been persisted.
var ErrNoRateAvailable = errors.New("no gold rate has been persisted yet")

// RateService is the read path for the canonical rate. It always serves the
// last persisted rate — even when the pipeline has been failing — labeled
// stale and/or indicative so consumers can render it honestly. It never
// serves an empty or zero price once any rate exists.
type RateService struct {
	rates    RateStore
	memCache *cache.MemoryCache
}

// NewRateService creates a new RateService
func NewRateService(rates RateStore, memCache *cache.MemoryCache) *RateService {
	return &RateService{
		rates:    rates,
		memCache: memCache,
	}
}

// Latest returns the most recent persisted rate with its read-path labels.
func (s *RateService) Latest(ctx context.Context) (*models.LatestRateResponse, error) {
	rate, ok := s.memCache.GetRate()
	if !ok {
		var err error
		rate, err = s.rates.Latest(ctx)
		if err != nil {
			return nil, err
		}
		if rate == nil {
			return nil, ErrNoRateAvailable
		}
		s.memCache.SetRate(rate)
	}

	now := time.Now()
	return &models.LatestRateResponse{
		Rate:       *rate,
		Indicative: !rate.Source.Authoritative(),
		Stale:      rate.RateDate.Before(util.RateDate(now)),
		NextUpdate: util.NextPublishTime(now),
	}, nil
}
