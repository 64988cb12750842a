package market

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"deepsent/internal/types"
)

// NA marks an indicator that could not be computed.
const NA = "N/A"

// MinBarsForIndicators is the history length the technical indicators need.
const MinBarsForIndicators = 60

// Technical indicator names in display order.
const (
	Change5D  = "5D Change (%)"
	Change60D = "60D Change (%)"
	RSI14     = "RSI (14)"
	ATR14     = "ATR (14)"
)

// Indicators computes the price change and volatility indicators of bars.
// With fewer than MinBarsForIndicators bars every value is NA.
func Indicators(bars []Bar) *types.Fundamentals {
	f := types.NewFundamentals()
	if len(bars) < MinBarsForIndicators {
		for _, name := range []string{Change5D, Change60D, RSI14, ATR14} {
			f.Set(name, NA)
		}
		return f
	}

	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range bars {
		closes[i], highs[i], lows[i] = b.Close, b.High, b.Low
	}

	f.Set(Change5D, percentChange(closes[n-5], closes[n-1]))
	f.Set(Change60D, percentChange(closes[n-60], closes[n-1]))
	f.Set(RSI14, last(talib.Rsi(closes, 14)))
	f.Set(ATR14, last(talib.Atr(highs, lows, closes, 14)))
	return f
}

func percentChange(from, to float64) any {
	if from == 0 {
		return NA
	}
	return round2((to/from - 1) * 100)
}

func last(values []float64) any {
	if len(values) == 0 {
		return NA
	}
	return round2(values[len(values)-1])
}

// round2 rounds half away from zero to two decimals; NaN and Inf become NA.
func round2(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
