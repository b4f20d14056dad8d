package pattern

import (
	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/model"
)

// Default rule thresholds.
const (
	HammerBodyRatio    = 0.3 // body must be under this share of the range
	HammerWickMultiple = 2.0 // lower wick must exceed this many bodies
	DojiBodyRatio      = 0.1
	StarBodyRatio      = 0.3 // middle candle of a morning star
)

// Thresholds holds the tunable ratios used by the rules.
type Thresholds struct {
	HammerBodyRatio    float64 `yaml:"hammer_body_ratio" json:"hammer_body_ratio"`
	HammerWickMultiple float64 `yaml:"hammer_wick_multiple" json:"hammer_wick_multiple"`
	DojiBodyRatio      float64 `yaml:"doji_body_ratio" json:"doji_body_ratio"`
	StarBodyRatio      float64 `yaml:"star_body_ratio" json:"star_body_ratio"`
}

// DefaultThresholds returns the reference thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HammerBodyRatio:    HammerBodyRatio,
		HammerWickMultiple: HammerWickMultiple,
		DojiBodyRatio:      DojiBodyRatio,
		StarBodyRatio:      StarBodyRatio,
	}
}

// withDefaults replaces unset (zero or negative) fields with defaults.
func (th Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if th.HammerBodyRatio <= 0 {
		th.HammerBodyRatio = d.HammerBodyRatio
	}
	if th.HammerWickMultiple <= 0 {
		th.HammerWickMultiple = d.HammerWickMultiple
	}
	if th.DojiBodyRatio <= 0 {
		th.DojiBodyRatio = d.DojiBodyRatio
	}
	if th.StarBodyRatio <= 0 {
		th.StarBodyRatio = d.StarBodyRatio
	}
	return th
}

// isHammer: small body near the top of the range with a long lower shadow.
func (th Thresholds) isHammer(c model.Candle) bool {
	body := calculator.Body(c)
	return body < th.HammerBodyRatio*calculator.Range(c) &&
		calculator.LowerWick(c) > th.HammerWickMultiple*body &&
		calculator.UpperWick(c) < body
}

// isDoji: open and close nearly equal relative to the range.
func (th Thresholds) isDoji(c model.Candle) bool {
	return calculator.Body(c) < th.DojiBodyRatio*calculator.Range(c)
}

// isBullishEngulfing: a bearish candle followed by a bullish one whose body
// strictly contains it.
func (th Thresholds) isBullishEngulfing(prev, cur model.Candle) bool {
	return prev.IsBearish() &&
		cur.IsBullish() &&
		cur.Close > prev.Open &&
		cur.Open < prev.Close
}

// isMorningStar: bearish candle, small-bodied star, then a bullish candle
// closing above the first candle's body midpoint.
func (th Thresholds) isMorningStar(first, star, cur model.Candle) bool {
	return first.Open > first.Close &&
		calculator.Body(star) < th.StarBodyRatio*calculator.Range(star) &&
		cur.IsBullish() &&
		cur.Close > calculator.BodyMidpoint(first)
}

// rule is one entry of the ordered rule list. span is the number of candles
// the rule reads, ending at the current one.
type rule struct {
	label model.Label
	span  int
	match func(th Thresholds, first, prev, cur model.Candle) bool
}

// rules are evaluated in this order and the last match wins, so the
// effective priority is MorningStar > BullishEngulfing > Doji > Hammer.
var rules = []rule{
	{model.LabelHammer, 1, func(th Thresholds, _, _, cur model.Candle) bool {
		return th.isHammer(cur)
	}},
	{model.LabelDoji, 1, func(th Thresholds, _, _, cur model.Candle) bool {
		return th.isDoji(cur)
	}},
	{model.LabelBullishEngulfing, 2, func(th Thresholds, _, prev, cur model.Candle) bool {
		return th.isBullishEngulfing(prev, cur)
	}},
	{model.LabelMorningStar, 3, func(th Thresholds, first, prev, cur model.Candle) bool {
		return th.isMorningStar(first, prev, cur)
	}},
}
