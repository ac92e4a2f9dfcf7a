package calculator

import (
	"math"
	"testing"
	"time"

	"StructureWatch/internal/model"
)

func TestCalculateSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	sma, err := CalculateSMA(prices, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sma != 3 {
		t.Errorf("expected SMA 3, got %.2f", sma)
	}

	if _, err := CalculateSMA(prices, 10); err == nil {
		t.Error("expected error for insufficient data")
	}
	if _, err := CalculateSMA(prices, 0); err == nil {
		t.Error("expected error for non-positive period")
	}
}

func TestEMASeries_SeedAndDirection(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema, err := EMASeries(prices, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ema) != len(prices) {
		t.Fatalf("expected %d values, got %d", len(prices), len(ema))
	}
	if ema[0] != prices[0] {
		t.Errorf("EMA should seed with first price, got %.4f", ema[0])
	}
	for i := 1; i < len(ema); i++ {
		if ema[i] <= ema[i-1] {
			t.Errorf("EMA should rise on a rising series, flat at index %d", i)
		}
		if ema[i] >= prices[i] {
			t.Errorf("EMA should trail a rising series, got %.4f >= %.4f at %d", ema[i], prices[i], i)
		}
	}
}

func constantRangeBars(count int, price, spread float64) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.OHLCV{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  price,
			High:  price + spread/2,
			Low:   price - spread/2,
			Close: price,
		}
	}
	return bars
}

func TestATRSeries_ConstantRange(t *testing.T) {
	bars := constantRangeBars(30, 100, 2)
	atr, err := ATRSeries(bars, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atr) != len(bars) {
		t.Fatalf("expected %d values, got %d", len(bars), len(atr))
	}
	for i := 0; i < 13; i++ {
		if !math.IsNaN(atr[i]) {
			t.Errorf("expected NaN before the first full window at %d", i)
		}
	}
	// Every true range is exactly the bar spread, so ATR equals it.
	for i := 13; i < len(atr); i++ {
		if math.Abs(atr[i]-2) > 1e-9 {
			t.Errorf("expected ATR 2.0 at %d, got %.6f", i, atr[i])
		}
	}
}

func TestATRSeries_InsufficientData(t *testing.T) {
	bars := constantRangeBars(10, 100, 2)
	if _, err := ATRSeries(bars, 14); err == nil {
		t.Error("expected error for insufficient data")
	}
}

func TestMeanATR_IgnoresNaN(t *testing.T) {
	atr := []float64{math.NaN(), math.NaN(), 2, 4}
	if got := MeanATR(atr); got != 3 {
		t.Errorf("expected mean 3, got %.2f", got)
	}
	if got := MeanATR([]float64{math.NaN()}); got != 0 {
		t.Errorf("expected 0 for all-NaN trace, got %.2f", got)
	}
}
