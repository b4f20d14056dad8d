package calculator

import (
	"errors"
	"fmt"
	"math"

	"PatternSentinel/internal/model"
)

var (
	ErrNonFinite     = errors.New("candle has non-finite price")
	ErrNegativePrice = errors.New("candle has negative price")
	ErrInvertedRange = errors.New("candle violates low <= open,close <= high")
)

// ValidateCandle checks that all prices are finite, non-negative and
// satisfy low <= min(open, close) <= max(open, close) <= high.
func ValidateCandle(c model.Candle) error {
	for _, p := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return ErrNonFinite
		}
		if p < 0 {
			return ErrNegativePrice
		}
	}
	if c.Low > math.Min(c.Open, c.Close) || math.Max(c.Open, c.Close) > c.High {
		return fmt.Errorf("%w: o=%g h=%g l=%g c=%g", ErrInvertedRange, c.Open, c.High, c.Low, c.Close)
	}
	return nil
}

// IsWellFormed reports whether ValidateCandle accepts the candle.
func IsWellFormed(c model.Candle) bool {
	return ValidateCandle(c) == nil
}

// ValidateOrder checks that timestamps are strictly increasing and returns
// the index of the first candle that breaks the ordering, or -1.
func ValidateOrder(s model.Series) int {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return i
		}
	}
	return -1
}
