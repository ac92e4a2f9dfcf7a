package collector

import (
	"context"
	"time"

	"StructureWatch/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchIntraday(_ context.Context, symbol string, interval, lookback time.Duration) (*model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.Bars
	if bars == nil {
		count := int(lookback / interval)
		bars = GenerateMockBars(m.Price, count, interval)
	}
	return &model.Series{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

// GenerateMockBars produces a gentle upward drift around basePrice.
func GenerateMockBars(basePrice float64, count int, interval time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().Add(-time.Duration(count) * interval)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * interval),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
