package model

// Trend is the side of the moving average the last close sits on.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// MarketContext describes where the latest candle of a series sits. It is
// reported next to detections and never influences classification.
type MarketContext struct {
	Close     float64 `json:"close"`
	SMA20     float64 `json:"sma20"`
	RSI14     float64 `json:"rsi14"`
	RangeHigh float64 `json:"range_high"`
	RangeLow  float64 `json:"range_low"`
	Position  float64 `json:"position"` // 0.0 ~ 1.0 within the range
	Trend     Trend   `json:"trend"`
}
