package calculator

import "errors"

var (
	// ErrBadPeriod is returned for a non-positive indicator period.
	ErrBadPeriod = errors.New("period must be positive")
	// ErrInsufficientData is returned when a series is too short for an indicator.
	ErrInsufficientData = errors.New("not enough data")
)

// SMA computes the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrBadPeriod
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), nil
}
