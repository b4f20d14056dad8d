package pattern

import (
	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/model"
)

// MinContext is the number of leading candles that never receive a label.
const MinContext = 2

// Classifier assigns one pattern label per candle. It holds no state
// besides its thresholds and is safe for concurrent use.
type Classifier struct {
	th Thresholds
}

// New creates a Classifier; unset thresholds fall back to the defaults.
func New(th Thresholds) *Classifier {
	return &Classifier{th: th.withDefaults()}
}

// Thresholds returns the effective thresholds.
func (c *Classifier) Thresholds() Thresholds { return c.th }

var defaultClassifier = New(DefaultThresholds())

// Classify labels series with the default thresholds.
func Classify(series model.Series) []model.Label {
	return defaultClassifier.Classify(series)
}

// Classify returns a freshly allocated label slice aligned with series.
// Positions before MinContext are always None. A malformed candle fails
// every rule that reads it, so it is labelled None and cannot serve as
// context for its successors.
func (c *Classifier) Classify(series model.Series) []model.Label {
	labels := make([]model.Label, len(series))
	for i := range labels {
		labels[i] = model.LabelNone
	}
	if len(series) <= MinContext {
		return labels
	}

	ok := make([]bool, len(series))
	for i, cd := range series {
		ok[i] = calculator.IsWellFormed(cd)
	}

	for i := MinContext; i < len(series); i++ {
		labels[i] = c.label(series[i-2], series[i-1], series[i], ok[i-2:i+1])
	}
	return labels
}

// label applies every rule to one window and keeps the last match.
// wellFormed is aligned with (first, prev, cur).
func (c *Classifier) label(first, prev, cur model.Candle, wellFormed []bool) model.Label {
	result := model.LabelNone
	for _, r := range rules {
		if !windowOK(wellFormed, r.span) {
			continue
		}
		if r.match(c.th, first, prev, cur) {
			result = r.label
		}
	}
	return result
}

func windowOK(wellFormed []bool, span int) bool {
	for _, ok := range wellFormed[len(wellFormed)-span:] {
		if !ok {
			return false
		}
	}
	return true
}

// Detect lists the non-None labels with their position in series.
// labels must be the result of classifying series.
func Detect(series model.Series, labels []model.Label) []model.Detection {
	var out []model.Detection
	for i, l := range labels {
		if !l.IsPattern() || i >= len(series) {
			continue
		}
		out = append(out, model.Detection{
			Index:  i,
			Time:   series[i].Time,
			Label:  l,
			Candle: series[i],
		})
	}
	return out
}

// Count tallies how often each pattern occurs. None is not counted.
func Count(labels []model.Label) map[model.Label]int {
	counts := make(map[model.Label]int, len(model.Labels))
	for _, l := range labels {
		if l.IsPattern() {
			counts[l]++
		}
	}
	return counts
}
