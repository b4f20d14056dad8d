package notifier

import (
	"strings"
	"testing"
	"time"

	"PatternSentinel/internal/model"
)

func scanResult(symbol string, labels ...model.Label) *model.ScanResult {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	res := &model.ScanResult{Symbol: symbol, Interval: "1d", Source: "test", ScannedAt: base}
	for i, l := range labels {
		c := model.Candle{Time: base.AddDate(0, 0, i), Open: 10, High: 11, Low: 9, Close: 10.5}
		res.Candles = append(res.Candles, c)
		res.Labels = append(res.Labels, l)
		if l.IsPattern() {
			res.Detections = append(res.Detections, model.Detection{Index: i, Time: c.Time, Label: l, Candle: c})
		}
	}
	return res
}

func TestFormatDetectionAlert(t *testing.T) {
	d := model.Detection{
		Index:  4,
		Time:   time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		Label:  model.LabelMorningStar,
		Candle: model.Candle{Open: 8, High: 9.3, Low: 7.9, Close: 9.2},
	}
	msg := FormatDetectionAlert("S&P", "1d", d)
	for _, want := range []string{"Morning Star", "S&amp;P", "2024-05-03", "C 9.20", "bullish"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in alert:\n%s", want, msg)
		}
	}
}

func TestFormatScanReport(t *testing.T) {
	res := scanResult("AAPL",
		model.LabelNone, model.LabelNone, model.LabelDoji,
		model.LabelHammer, model.LabelDoji, model.LabelNone)
	msg := FormatScanReport(res, 2)
	if !strings.Contains(msg, "Doji: 2") || !strings.Contains(msg, "Hammer: 1") {
		t.Errorf("expected counts in report:\n%s", msg)
	}
	if strings.Contains(msg, "2024-05-03 Doji") {
		t.Errorf("expected only the 2 newest detections:\n%s", msg)
	}
	if !strings.Contains(msg, "2024-05-05 Doji") || !strings.Contains(msg, "2024-05-04 Hammer") {
		t.Errorf("expected newest detections:\n%s", msg)
	}
}

func TestFormatScanReport_NoDetections(t *testing.T) {
	msg := FormatScanReport(scanResult("AAPL", model.LabelNone), 5)
	if !strings.Contains(msg, "未发现形态") {
		t.Errorf("expected empty marker:\n%s", msg)
	}
}

func TestFormatPatternSummary(t *testing.T) {
	results := []*model.ScanResult{
		scanResult("MSFT", model.LabelNone, model.LabelNone, model.LabelBullishEngulfing),
		nil,
		scanResult("AAPL", model.LabelNone, model.LabelDoji, model.LabelNone),
	}
	msg := FormatPatternSummary(results, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC))
	aapl := strings.Index(msg, "AAPL: None")
	msft := strings.Index(msg, "MSFT: Bullish Engulfing")
	if aapl < 0 || msft < 0 {
		t.Fatalf("expected both symbols:\n%s", msg)
	}
	if aapl > msft {
		t.Errorf("expected symbols sorted:\n%s", msg)
	}
}

func TestFormatMarketContext(t *testing.T) {
	if got := FormatMarketContext(nil); got != "" {
		t.Errorf("expected empty string for nil context, got %q", got)
	}
	mc := &model.MarketContext{Close: 95, SMA20: 100, RSI14: 28.44, RangeHigh: 120, RangeLow: 90, Position: 0.1667, Trend: model.TrendDown}
	got := FormatMarketContext(mc)
	for _, want := range []string{"MA20下方", "MA20 100.00", "RSI14 28.4", "17%", "90.00 ~ 120.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}

	res := scanResult("AAPL", model.LabelNone)
	res.Context = mc
	if !strings.Contains(FormatScanReport(res, 5), "RSI14") {
		t.Error("expected context line in scan report")
	}
}
