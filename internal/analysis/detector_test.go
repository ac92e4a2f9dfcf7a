package analysis

import (
	"testing"
	"time"

	"StructureWatch/internal/model"
)

// flatBars builds count bars at the given close with a small fixed spread.
func flatBars(count int, price float64) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	for i := range bars {
		// Flat columns: no window shows movement, so nothing confirms
		// unless a test raises an individual bar.
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   price,
			High:   price + 0.2,
			Low:    price - 0.2,
			Close:  price,
			Volume: 1000,
		}
	}
	return bars
}

func fixedDetector(t *testing.T, w int) *SwingDetector {
	t.Helper()
	d, err := NewSwingDetector(DetectorConfig{
		WindowRadius:     w,
		Mode:             SensitivityFixed,
		MovementFraction: 0.005,
	})
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	return d
}

func TestDetect_ShortSeriesYieldsNothing(t *testing.T) {
	d := fixedDetector(t, 5)
	series := &model.Series{Symbol: "TEST", Bars: flatBars(10, 100)} // < 2w+1
	points, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no swing points for short series, got %d", len(points))
	}
}

func TestDetect_StrictLocalMaximumMarkedOnce(t *testing.T) {
	d := fixedDetector(t, 3)
	bars := flatBars(21, 100)
	// Bar 10 spikes well above the movement threshold (0.5% of ~100).
	bars[10].High = 110
	bars[10].Close = 108
	series := &model.Series{Symbol: "TEST", Bars: bars}

	points, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	highs := 0
	for _, p := range points {
		if p.Kind == model.SwingHigh {
			highs++
			if p.Index != 10 {
				t.Errorf("expected swing high at index 10, got %d", p.Index)
			}
			if p.Price != 110 {
				t.Errorf("expected swing price 110, got %.2f", p.Price)
			}
		}
	}
	if highs != 1 {
		t.Fatalf("expected exactly one swing high, got %d", highs)
	}
}

func TestDetect_BoundaryBarsNeverSwing(t *testing.T) {
	d := fixedDetector(t, 5)
	bars := flatBars(15, 100)
	bars[0].High = 120  // extreme value but no left neighbors
	bars[14].Low = 80   // extreme value but no right neighbors
	series := &model.Series{Symbol: "TEST", Bars: bars}

	points, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range points {
		if p.Index < 5 || p.Index > 9 {
			t.Errorf("boundary bar %d was marked as a swing", p.Index)
		}
	}
}

func TestDetect_Deterministic(t *testing.T) {
	d := fixedDetector(t, 3)
	bars := flatBars(30, 100)
	bars[8].High = 107
	bars[20].Low = 93
	series := &model.Series{Symbol: "TEST", Bars: bars}

	first, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs disagree: %d vs %d points", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("point %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDetect_MovementThresholdSuppressesNoise(t *testing.T) {
	d := fixedDetector(t, 3)
	bars := flatBars(21, 100)
	// A marginal bump: local max, but total window range stays below 0.5%.
	for i := range bars {
		bars[i].High = 100.1
		bars[i].Low = 99.9
	}
	bars[10].High = 100.2
	series := &model.Series{Symbol: "TEST", Bars: bars}

	points, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected noise bump to be suppressed, got %d points", len(points))
	}
}

func TestDetect_WideSpreadFlatBarsConfirmNothing(t *testing.T) {
	d := fixedDetector(t, 3)
	// Every bar spans a full point high to low, but the high column and
	// the low column are each perfectly flat. The spread between columns
	// is not movement; no swing may be confirmed.
	bars := flatBars(21, 100)
	for i := range bars {
		bars[i].High = 100.5
		bars[i].Low = 99.5
	}
	series := &model.Series{Symbol: "TEST", Bars: bars}

	points, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no swings on flat columns, got %d points", len(points))
	}
}

func TestDetect_TrendFilterSuppressesCounterTrendSwings(t *testing.T) {
	d, err := NewSwingDetector(DetectorConfig{
		WindowRadius:     3,
		Mode:             SensitivityFixed,
		MovementFraction: 0.005,
		TrendFilterSpan:  5,
	})
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}

	// Steadily falling series; the spike at bar 10 stays below the falling
	// average's level at earlier bars but well above it locally.
	bars := flatBars(21, 100)
	for i := range bars {
		p := 100 - float64(i)*2
		bars[i].Open, bars[i].Close = p, p
		bars[i].High, bars[i].Low = p+0.5, p-0.5
	}
	bars[10].Low = bars[10].Close - 10 // deep local low, below EMA
	series := &model.Series{Symbol: "TEST", Bars: bars}

	points, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range points {
		if p.Kind == model.SwingHigh {
			// In a falling series no high should clear the trend filter
			// around the spike window.
			if p.Index >= 7 && p.Index <= 13 {
				t.Errorf("swing high at %d despite price under trend filter", p.Index)
			}
		}
	}
}

func TestDetect_VolatilityModeNeedsATRWindow(t *testing.T) {
	d, err := NewSwingDetector(DetectorConfig{
		WindowRadius:     2,
		Mode:             SensitivityVolatility,
		VolatilityFactor: 1.5,
		ATRPeriod:        14,
	})
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	// 2w+1 satisfied but under ATR period+1: skip, not an error.
	series := &model.Series{Symbol: "TEST", Bars: flatBars(10, 100)}
	points, err := d.Detect(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no points without an ATR window, got %d", len(points))
	}
}
