package cache

import (
	"sync"
	"time"

	"github.com/srabbas1701/wealthlens/internal/models"
)

// MemoryCache provides an in-memory L1 cache for the latest gold rate so the
// read path does not hit Postgres on every poll.
type MemoryCache struct {
	mu      sync.RWMutex
	rate    *models.GoldRate
	setAt   time.Time
	rateTTL time.Duration
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(rateTTL time.Duration) *MemoryCache {
	return &MemoryCache{rateTTL: rateTTL}
}

// GetRate retrieves the cached rate if fresh
func (c *MemoryCache) GetRate() (*models.GoldRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rate == nil {
		return nil, false
	}
	if time.Since(c.setAt) > c.rateTTL {
		return nil, false
	}
	return c.rate, true
}

// SetRate caches a rate
func (c *MemoryCache) SetRate(rate *models.GoldRate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rate = rate
	c.setAt = time.Now()
}

// Invalidate drops the cached rate. Called after a pipeline run persists a
// new one.
func (c *MemoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rate = nil
}
