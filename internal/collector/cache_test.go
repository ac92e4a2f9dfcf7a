package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"StructureWatch/internal/model"
)

func TestSeriesCache_FreshHit(t *testing.T) {
	cache := NewSeriesCache(15 * time.Minute)
	now := time.Now()
	series := &model.Series{Symbol: "TEST", Bars: GenerateMockBars(100, 5, time.Minute)}

	cache.Put(series, now)

	got, ok := cache.Get(now.Add(10 * time.Minute))
	assert.True(t, ok, "entry within TTL should hit")
	assert.Same(t, series, got)
}

func TestSeriesCache_StaleMiss(t *testing.T) {
	cache := NewSeriesCache(15 * time.Minute)
	now := time.Now()
	series := &model.Series{Symbol: "TEST", Bars: GenerateMockBars(100, 5, time.Minute)}

	cache.Put(series, now)

	_, ok := cache.Get(now.Add(15 * time.Minute))
	assert.False(t, ok, "entry at exactly TTL should miss")
}

func TestSeriesCache_EmptyIsMiss(t *testing.T) {
	cache := NewSeriesCache(15 * time.Minute)
	_, ok := cache.Get(time.Now())
	assert.False(t, ok, "empty cache should miss")

	// A corrupted (empty) snapshot is a miss too, never an error.
	cache.Put(&model.Series{Symbol: "TEST"}, time.Now())
	_, ok = cache.Get(time.Now())
	assert.False(t, ok, "bar-less snapshot should miss")
}

func TestSeriesCache_PutRefreshes(t *testing.T) {
	cache := NewSeriesCache(15 * time.Minute)
	now := time.Now()

	old := &model.Series{Symbol: "TEST", Bars: GenerateMockBars(100, 5, time.Minute)}
	cache.Put(old, now.Add(-time.Hour))
	_, ok := cache.Get(now)
	assert.False(t, ok)

	fresh := &model.Series{Symbol: "TEST", Bars: GenerateMockBars(101, 5, time.Minute)}
	cache.Put(fresh, now)
	got, ok := cache.Get(now.Add(time.Minute))
	assert.True(t, ok)
	assert.Same(t, fresh, got)
}
