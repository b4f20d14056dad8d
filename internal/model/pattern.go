package model

// Label is the pattern assigned to a single candle.
type Label string

const (
	LabelNone             Label = "None"
	LabelHammer           Label = "Hammer"
	LabelDoji             Label = "Doji"
	LabelBullishEngulfing Label = "Bullish Engulfing"
	LabelMorningStar      Label = "Morning Star"
)

// Labels lists every pattern label, None excluded, in rule evaluation order.
var Labels = []Label{LabelHammer, LabelDoji, LabelBullishEngulfing, LabelMorningStar}

// IsPattern reports whether the label names an actual pattern.
func (l Label) IsPattern() bool { return l != LabelNone && l != "" }

// Direction returns the market bias the pattern signals.
func (l Label) Direction() string {
	switch l {
	case LabelHammer, LabelBullishEngulfing, LabelMorningStar:
		return "bullish"
	case LabelDoji:
		return "neutral"
	default:
		return ""
	}
}
