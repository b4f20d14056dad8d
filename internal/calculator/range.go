package calculator

import (
	"math"

	"PatternSentinel/internal/model"
)

// Context window sizes.
const (
	ContextSMAPeriod = 20
	ContextRSIPeriod = 14
	ContextRange     = 252 // about one year of daily bars
)

// WindowRange returns the highest high and lowest low of the last n
// candles (all candles when n <= 0 or n exceeds the series).
func WindowRange(s model.Series, n int) (high, low float64, err error) {
	if len(s) == 0 {
		return 0, 0, ErrInsufficientData
	}
	start := 0
	if n > 0 && n < len(s) {
		start = len(s) - n
	}
	high, low = math.Inf(-1), math.Inf(1)
	for _, c := range s[start:] {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	return high, low, nil
}

// RangePosition returns where price sits between low and high, clamped to
// [0, 1]. A flat range yields 0.5.
func RangePosition(price, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	return math.Max(0, math.Min(1, (price-low)/(high-low)))
}

// Context summarises the latest candle of s against its recent history.
// It returns nil when s is too short for the indicators or when any
// candle in the lookback is malformed.
func Context(s model.Series) *model.MarketContext {
	if len(s) < ContextSMAPeriod || len(s) < ContextRSIPeriod+1 {
		return nil
	}
	start := 0
	if len(s) > ContextRange {
		start = len(s) - ContextRange
	}
	window := s[start:]
	for _, c := range window {
		if !IsWellFormed(c) {
			return nil
		}
	}

	closes := window.Closes()
	sma, err := SMA(closes, ContextSMAPeriod)
	if err != nil {
		return nil
	}
	rsi, err := RSI(closes, ContextRSIPeriod)
	if err != nil {
		return nil
	}
	high, low, err := WindowRange(window, 0)
	if err != nil {
		return nil
	}

	last := window[len(window)-1].Close
	trend := model.TrendFlat
	switch {
	case last > sma:
		trend = model.TrendUp
	case last < sma:
		trend = model.TrendDown
	}
	return &model.MarketContext{
		Close:     last,
		SMA20:     sma,
		RSI14:     rsi,
		RangeHigh: high,
		RangeLow:  low,
		Position:  RangePosition(last, high, low),
		Trend:     trend,
	}
}
