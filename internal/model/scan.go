package model

import "time"

// Detection is a non-None label located in its series.
type Detection struct {
	Index  int       `json:"index"`
	Time   time.Time `json:"time"`
	Label  Label     `json:"label"`
	Candle Candle    `json:"candle"`
}

// ScanResult is the outcome of fetching and classifying one symbol.
type ScanResult struct {
	RunID      string         `json:"run_id"`
	Symbol     string         `json:"symbol"`
	Interval   string         `json:"interval"`
	Source     string         `json:"source"`
	Candles    Series         `json:"candles"`
	Labels     []Label        `json:"labels"`
	Detections []Detection    `json:"detections"`
	Context    *MarketContext `json:"context,omitempty"`
	ScannedAt  time.Time      `json:"scanned_at"`
}

// Latest returns the detection on the most recent candle, if any.
func (r *ScanResult) Latest() (Detection, bool) {
	if len(r.Detections) == 0 || len(r.Candles) == 0 {
		return Detection{}, false
	}
	d := r.Detections[len(r.Detections)-1]
	if d.Index != len(r.Candles)-1 {
		return Detection{}, false
	}
	return d, true
}
