package analysis

import (
	"math"

	"StructureWatch/internal/calculator"
	"StructureWatch/internal/model"
)

// ClassifierConfig controls regime classification.
type ClassifierConfig struct {
	// TrendStrengthThreshold gates candidate verdicts behind a corroborating
	// strength score. 0 disables the filter; the baseline break rule is then
	// the only policy.
	TrendStrengthThreshold float64
	TrendSpan              int // EMA span used by the strength score
	ATRPeriod              int
}

// DefaultClassifierConfig disables the corroborating filter.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{TrendSpan: 50, ATRPeriod: 14}
}

// StructureClassifier turns swing labels plus the latest close into a
// trend-regime verdict. The baseline rule is a structure break: close
// above the last confirmed swing high starts an uptrend, close below the
// last confirmed swing low starts a downtrend. Anything in between leaves
// the previous state untouched.
type StructureClassifier struct {
	cfg ClassifierConfig
}

func NewStructureClassifier(cfg ClassifierConfig) *StructureClassifier {
	if cfg.TrendSpan <= 0 {
		cfg.TrendSpan = 50
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}
	return &StructureClassifier{cfg: cfg}
}

// Classify returns a definite new state and true, or the zero state and
// false when there is no verdict. The caller leaves its previous state
// unchanged on no-verdict; repeating inputs therefore cannot re-alert.
func (c *StructureClassifier) Classify(series *model.Series, swings []model.SwingPoint, prev model.StructureState) (model.StructureState, bool) {
	high, okHigh := model.LastSwing(swings, model.SwingHigh)
	low, okLow := model.LastSwing(swings, model.SwingLow)
	if !okHigh || !okLow {
		return model.StructureUnset, false
	}

	close := series.LastClose()
	var candidate model.StructureState
	switch {
	case close > high.Price && prev != model.StructureUptrend:
		candidate = model.StructureUptrend
	case close < low.Price && prev != model.StructureDowntrend:
		candidate = model.StructureDowntrend
	default:
		return model.StructureUnset, false
	}

	if c.cfg.TrendStrengthThreshold > 0 {
		if c.trendStrength(series) <= c.cfg.TrendStrengthThreshold {
			return model.StructureUnset, false
		}
	}
	return candidate, true
}

// trendStrength combines sign agreement between price momentum and the
// EMA slope with an inverse-volatility term. It only ever suppresses a
// candidate verdict, never produces one.
func (c *StructureClassifier) trendStrength(series *model.Series) float64 {
	closes := series.Closes()
	if len(closes) < 2 {
		return 0
	}

	momentum := 0.0
	for i := 1; i < len(closes); i++ {
		momentum += sign(closes[i] - closes[i-1])
	}
	momentum /= float64(len(closes) - 1)

	ema, err := calculator.EMASeries(closes, c.cfg.TrendSpan)
	if err != nil {
		return 0
	}
	emaSlope := sign(ema[len(ema)-1] - ema[len(ema)-2])

	volTerm := 1.0
	if atr, err := calculator.ATRSeries(series.Bars, c.cfg.ATRPeriod); err == nil {
		last := atr[len(atr)-1]
		if close := series.LastClose(); close > 0 && !math.IsNaN(last) {
			volTerm = 1 - last/close
		}
	}

	return math.Abs(momentum * emaSlope * volTerm)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
