package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
)

var labelIcons = map[model.Label]string{
	model.LabelHammer:           "🔨",
	model.LabelDoji:             "➕",
	model.LabelBullishEngulfing: "🟢",
	model.LabelMorningStar:      "🌅",
}

func icon(l model.Label) string {
	if s, ok := labelIcons[l]; ok {
		return s
	}
	return "•"
}

// FormatDetectionAlert formats a single fresh detection.
func FormatDetectionAlert(symbol, interval string, d model.Detection) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s %s\n\n", icon(d.Label), d.Label, html.EscapeString(symbol), interval))
	b.WriteString(fmt.Sprintf("K线时间: %s\n", d.Time.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("O %.2f  H %.2f  L %.2f  C %.2f\n", d.Candle.Open, d.Candle.High, d.Candle.Low, d.Candle.Close))
	if dir := d.Label.Direction(); dir != "" {
		b.WriteString(fmt.Sprintf("信号方向: %s\n", dir))
	}
	return b.String()
}

// FormatMarketContext renders the indicator line appended to alerts and
// reports. It is empty when no context is available.
func FormatMarketContext(mc *model.MarketContext) string {
	if mc == nil {
		return ""
	}
	return fmt.Sprintf("趋势: %s | MA20 %.2f | RSI14 %.1f | 区间位置 %.0f%% (%.2f ~ %.2f)\n",
		trendText(mc.Trend), mc.SMA20, mc.RSI14, mc.Position*100, mc.RangeLow, mc.RangeHigh)
}

func trendText(t model.Trend) string {
	switch t {
	case model.TrendUp:
		return "MA20上方"
	case model.TrendDown:
		return "MA20下方"
	default:
		return "持平"
	}
}

// FormatScanReport formats the recent detections of one scan.
// At most maxRows detections are listed, newest first.
func FormatScanReport(res *model.ScanResult, maxRows int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>形态扫描</b> | %s %s | %s\n\n",
		html.EscapeString(res.Symbol), res.Interval, res.ScannedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("K线数量: %d | 数据源: %s\n", len(res.Candles), res.Source))
	b.WriteString(FormatMarketContext(res.Context))

	if len(res.Detections) == 0 {
		b.WriteString("\n未发现形态")
		return b.String()
	}

	counts := pattern.Count(res.Labels)
	b.WriteString("\n📈 <b>形态统计:</b>\n")
	for _, l := range model.Labels {
		if n := counts[l]; n > 0 {
			b.WriteString(fmt.Sprintf("  %s %s: %d\n", icon(l), l, n))
		}
	}

	b.WriteString("\n🕒 <b>最近形态:</b>\n")
	for i := len(res.Detections) - 1; i >= 0 && (maxRows <= 0 || len(res.Detections)-i <= maxRows); i-- {
		d := res.Detections[i]
		b.WriteString(fmt.Sprintf("  %s %s  C=%.2f\n", d.Time.Format("2006-01-02"), d.Label, d.Candle.Close))
	}
	return b.String()
}

// FormatPatternSummary lists the latest-candle pattern of each symbol.
func FormatPatternSummary(results []*model.ScanResult, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>最新K线形态</b> | %s\n\n", now.Format("2006-01-02 15:04")))

	rows := make([]*model.ScanResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })

	if len(rows) == 0 {
		b.WriteString("暂无数据")
		return b.String()
	}
	for _, r := range rows {
		label := model.LabelNone
		if d, ok := r.Latest(); ok {
			label = d.Label
		}
		b.WriteString(fmt.Sprintf("%s %s: %s\n", icon(label), html.EscapeString(r.Symbol), label))
	}
	return b.String()
}
