package calculator

import (
	"errors"
	"math"

	"StructureWatch/internal/model"
)

// ATRSeries computes the average true range trace over the bars using a
// simple rolling mean of true range, matching a rolling(period).mean().
// Entries before the first full window are NaN. Requires period+1 bars.
func ATRSeries(bars []model.OHLCV, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return nil, errors.New("not enough data for ATR calculation")
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		highLow := bars[i].High - bars[i].Low
		highClose := math.Abs(bars[i].High - bars[i-1].Close)
		lowClose := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	atr := make([]float64, len(bars))
	sum := 0.0
	for i := range tr {
		sum += tr[i]
		if i >= period {
			sum -= tr[i-period]
		}
		if i >= period-1 {
			atr[i] = sum / float64(period)
		} else {
			atr[i] = math.NaN()
		}
	}
	return atr, nil
}

// MeanATR returns the mean of the defined (non-NaN) portion of an ATR trace.
func MeanATR(atr []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range atr {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
