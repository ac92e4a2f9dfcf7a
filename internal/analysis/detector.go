package analysis

import (
	"fmt"
	"math"

	"StructureWatch/internal/calculator"
	"StructureWatch/internal/model"
)

// SensitivityMode selects how the minimum-movement threshold is derived.
type SensitivityMode string

const (
	// SensitivityFixed uses a fixed fraction of the mean close.
	SensitivityFixed SensitivityMode = "fixed"
	// SensitivityVolatility scales mean ATR by the volatility factor.
	SensitivityVolatility SensitivityMode = "volatility_normalized"
)

// DetectorConfig controls swing point detection.
type DetectorConfig struct {
	WindowRadius     int             // bars on each side of a candidate
	Mode             SensitivityMode // threshold derivation
	MovementFraction float64         // fixed mode: fraction of mean close
	VolatilityFactor float64         // volatility mode: ATR multiplier
	ATRPeriod        int
	TrendFilterSpan  int // EMA span for the trend filter, 0 disables
}

// DefaultDetectorConfig mirrors the monitoring defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		WindowRadius:     5,
		Mode:             SensitivityVolatility,
		MovementFraction: 0.005,
		VolatilityFactor: 1.5,
		ATRPeriod:        14,
		TrendFilterSpan:  50,
	}
}

// SwingDetector labels confirmed local extrema within a bar sequence.
type SwingDetector struct {
	cfg DetectorConfig
}

// NewSwingDetector validates the config and builds a detector.
func NewSwingDetector(cfg DetectorConfig) (*SwingDetector, error) {
	if cfg.WindowRadius <= 0 {
		return nil, fmt.Errorf("window radius must be positive, got %d", cfg.WindowRadius)
	}
	switch cfg.Mode {
	case SensitivityFixed, SensitivityVolatility:
	default:
		return nil, fmt.Errorf("unknown sensitivity mode %q", cfg.Mode)
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}
	return &SwingDetector{cfg: cfg}, nil
}

// Detect returns the confirmed swing points of the series in index order.
// A series shorter than 2w+1 bars yields an empty result, not an error:
// boundary bars can never be confirmed. Detection is deterministic and
// never modifies the series.
func (d *SwingDetector) Detect(series *model.Series) ([]model.SwingPoint, error) {
	w := d.cfg.WindowRadius
	if series.Len() < 2*w+1 {
		return nil, nil
	}
	if d.cfg.Mode == SensitivityVolatility && series.Len() < d.cfg.ATRPeriod+1 {
		// Not enough bars to derive the volatility threshold yet.
		return nil, nil
	}

	minMovement, err := d.minMovement(series)
	if err != nil {
		return nil, err
	}

	var trend []float64
	if d.cfg.TrendFilterSpan > 0 {
		trend, err = calculator.EMASeries(series.Closes(), d.cfg.TrendFilterSpan)
		if err != nil {
			return nil, fmt.Errorf("trend filter: %w", err)
		}
	}

	// Movement is measured within the candidate's own price column: a
	// swing high must clear the surrounding highs by the threshold, a
	// swing low must undercut the surrounding lows. A wide high/low
	// spread on otherwise flat bars confirms nothing.
	bars := series.Bars
	var points []model.SwingPoint
	for i := w; i < len(bars)-w; i++ {
		maxHigh, minHigh, maxLow, minLow := windowExtremes(bars, i-w, i+w)

		if bars[i].High == maxHigh && maxHigh-minHigh > minMovement {
			if trend == nil || bars[i].High > trend[i] {
				points = append(points, model.SwingPoint{Index: i, Price: bars[i].High, Kind: model.SwingHigh})
			}
		}
		if bars[i].Low == minLow && maxLow-minLow > minMovement {
			if trend == nil || bars[i].Low < trend[i] {
				points = append(points, model.SwingPoint{Index: i, Price: bars[i].Low, Kind: model.SwingLow})
			}
		}
	}
	return points, nil
}

// minMovement derives the confirmation threshold for the series.
func (d *SwingDetector) minMovement(series *model.Series) (float64, error) {
	switch d.cfg.Mode {
	case SensitivityVolatility:
		atr, err := calculator.ATRSeries(series.Bars, d.cfg.ATRPeriod)
		if err != nil {
			return 0, fmt.Errorf("atr threshold: %w", err)
		}
		return calculator.MeanATR(atr) * d.cfg.VolatilityFactor, nil
	default:
		closes := series.Closes()
		mean, err := calculator.CalculateSMA(closes, len(closes))
		if err != nil {
			return 0, fmt.Errorf("movement threshold: %w", err)
		}
		return mean * d.cfg.MovementFraction, nil
	}
}

func windowExtremes(bars []model.OHLCV, lo, hi int) (maxHigh, minHigh, maxLow, minLow float64) {
	maxHigh, minHigh = math.Inf(-1), math.Inf(1)
	maxLow, minLow = math.Inf(-1), math.Inf(1)
	for i := lo; i <= hi; i++ {
		if bars[i].High > maxHigh {
			maxHigh = bars[i].High
		}
		if bars[i].High < minHigh {
			minHigh = bars[i].High
		}
		if bars[i].Low > maxLow {
			maxLow = bars[i].Low
		}
		if bars[i].Low < minLow {
			minLow = bars[i].Low
		}
	}
	return maxHigh, minHigh, maxLow, minLow
}
