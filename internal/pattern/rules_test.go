package pattern

import (
	"testing"

	"PatternSentinel/internal/model"
)

func ohlc(o, h, l, c float64) model.Candle {
	return model.Candle{Open: o, High: h, Low: l, Close: c}
}

func TestIsHammer(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name   string
		candle model.Candle
		want   bool
	}{
		{"textbook", ohlc(10, 10.25, 9.0, 10.2), true},
		{"bearish body still counts", ohlc(10.2, 10.25, 9.0, 10), true},
		{"body too large", ohlc(10, 10.6, 9.0, 10.5), false},
		{"lower wick too short", ohlc(10, 10.25, 9.9, 10.2), false},
		{"upper wick too long", ohlc(10, 10.6, 9.0, 10.2), false},
		{"zero range", ohlc(10, 10, 10, 10), false},
	}
	for _, tt := range tests {
		if got := th.isHammer(tt.candle); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestIsDoji(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name   string
		candle model.Candle
		want   bool
	}{
		{"wide range tiny body", ohlc(10.0, 10.5, 9.4, 10.02), true},
		{"exact open close", ohlc(10, 11, 9, 10), true},
		{"body above threshold", ohlc(10, 11, 9, 10.25), false},
		{"large body", ohlc(10, 11, 9, 10.8), false},
		{"zero range", ohlc(10, 10, 10, 10), false},
	}
	for _, tt := range tests {
		if got := th.isDoji(tt.candle); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestIsBullishEngulfing(t *testing.T) {
	th := DefaultThresholds()
	prev := ohlc(10, 10.1, 8.9, 9)
	cur := ohlc(8.8, 10.4, 8.7, 10.3)
	if !th.isBullishEngulfing(prev, cur) {
		t.Error("expected bullish engulfing")
	}

	prevBull := ohlc(9, 10.1, 8.9, 10)
	if th.isBullishEngulfing(prevBull, cur) {
		t.Error("previous candle must be bearish")
	}

	curBear := ohlc(10.3, 10.4, 8.7, 8.8)
	if th.isBullishEngulfing(prev, curBear) {
		t.Error("current candle must be bullish")
	}

	// Equal bodies do not strictly contain each other.
	curEqual := ohlc(9, 10.1, 8.9, 10)
	if th.isBullishEngulfing(prev, curEqual) {
		t.Error("engulfing must be strict")
	}
}

func TestIsMorningStar(t *testing.T) {
	th := DefaultThresholds()
	first := ohlc(10, 10.2, 7.8, 8)
	star := ohlc(8, 8.3, 7.6, 7.9)
	cur := ohlc(8, 9.3, 7.9, 9.2)
	if !th.isMorningStar(first, star, cur) {
		t.Fatal("expected morning star")
	}

	if th.isMorningStar(ohlc(8, 10.2, 7.8, 10), star, cur) {
		t.Error("first candle must be bearish")
	}
	if th.isMorningStar(first, ohlc(8, 8.3, 7.6, 7.6), cur) {
		t.Error("star body must be small relative to its range")
	}
	if th.isMorningStar(first, ohlc(8, 8, 8, 8), cur) {
		t.Error("flat star has zero range and must not match")
	}
	if th.isMorningStar(first, star, ohlc(8, 9.3, 7.9, 8.9)) {
		t.Error("close must be above first candle's midpoint")
	}
	if th.isMorningStar(first, star, ohlc(9.2, 9.3, 7.9, 8.5)) {
		t.Error("current candle must be bullish")
	}
}

func TestRuleOrder(t *testing.T) {
	want := []model.Label{
		model.LabelHammer,
		model.LabelDoji,
		model.LabelBullishEngulfing,
		model.LabelMorningStar,
	}
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if r.label != want[i] {
			t.Errorf("rule %d: expected %s, got %s", i, want[i], r.label)
		}
	}
}

func TestThresholdsWithDefaults(t *testing.T) {
	th := Thresholds{DojiBodyRatio: 0.2}.withDefaults()
	if th.DojiBodyRatio != 0.2 {
		t.Errorf("expected override 0.2, got %f", th.DojiBodyRatio)
	}
	if th.HammerBodyRatio != HammerBodyRatio || th.HammerWickMultiple != HammerWickMultiple || th.StarBodyRatio != StarBodyRatio {
		t.Errorf("expected defaults for unset fields, got %+v", th)
	}
}
