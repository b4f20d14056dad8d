package calculator

import (
	"math"

	"PatternSentinel/internal/model"
)

// Body returns the absolute size of the candle's real body.
func Body(c model.Candle) float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the distance between the candle's high and low.
func Range(c model.Candle) float64 {
	return c.High - c.Low
}

// LowerWick returns the length of the shadow below the body.
func LowerWick(c model.Candle) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

// UpperWick returns the length of the shadow above the body.
func UpperWick(c model.Candle) float64 {
	return c.High - math.Max(c.Open, c.Close)
}

// BodyMidpoint returns the price halfway between open and close.
func BodyMidpoint(c model.Candle) float64 {
	return (c.Open + c.Close) / 2
}
