package collector

import (
	"time"

	"StructureWatch/internal/model"
)

// SeriesCache holds the last fetched Series for one instrument. Each
// monitor loop owns its own cache, so no locking is involved. A nil or
// stale entry is a miss, never an error.
type SeriesCache struct {
	ttl        time.Duration
	series     *model.Series
	capturedAt time.Time
}

// NewSeriesCache creates a cache whose entries stay fresh for ttl.
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	return &SeriesCache{ttl: ttl}
}

// Get returns the cached series if it was captured within the freshness
// window ending at now.
func (c *SeriesCache) Get(now time.Time) (*model.Series, bool) {
	if c.series == nil || len(c.series.Bars) == 0 {
		return nil, false
	}
	if now.Sub(c.capturedAt) >= c.ttl {
		return nil, false
	}
	return c.series, true
}

// Put stores a freshly fetched series with its capture time.
func (c *SeriesCache) Put(series *model.Series, now time.Time) {
	c.series = series
	c.capturedAt = now
}
