package collector

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"PatternSentinel/internal/model"
)

// MockFetcher returns random-walk candles for development. Data, when
// set, is returned instead (trimmed to limit).
type MockFetcher struct {
	Price float64
	Data  model.Series
	Err   error

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockFetcher creates a random-walk fetcher around basePrice.
func NewMockFetcher(basePrice float64, seed int64) *MockFetcher {
	return &MockFetcher{Price: basePrice, rng: rand.New(rand.NewSource(seed))}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _, interval string, limit int) (model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Data != nil {
		out := make(model.Series, len(m.Data))
		copy(out, m.Data)
		return sortAndTrim(out, limit), nil
	}
	if limit <= 0 {
		limit = 100
	}
	return m.randomWalk(limit, intervalDuration(interval)), nil
}

func (m *MockFetcher) randomWalk(count int, step time.Duration) model.Series {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	end := time.Now().UTC().Truncate(step)
	bars := make(model.Series, count)
	price := m.Price
	for i := 0; i < count; i++ {
		open := price
		close := open * (1 + m.rng.NormFloat64()*0.01)
		high := math.Max(open, close) * (1 + m.rng.Float64()*0.005)
		low := math.Min(open, close) * (1 - m.rng.Float64()*0.005)
		bars[i] = model.Candle{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 1000000 * (0.5 + m.rng.Float64()),
		}
		price = close
	}
	return bars
}

func intervalDuration(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h", "60m":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1wk":
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// Indices of the patterns planted by SyntheticSeries.
const (
	SyntheticHammerIndex      = 3
	SyntheticDojiIndex        = 5
	SyntheticEngulfingIndex   = 8
	SyntheticMorningStarIndex = 12
	SyntheticLength           = 15
)

// syntheticBars are (open, high, low, close). Filler bars are strong
// bullish candles that match no rule given their neighbours.
var syntheticBars = [SyntheticLength][4]float64{
	{100, 101.1, 99.9, 101},       // filler
	{101, 102.1, 100.9, 102},      // filler
	{102, 103.1, 101.9, 103},      // filler
	{103, 103.25, 102.0, 103.2},   // hammer
	{104, 105.1, 103.9, 105},      // filler
	{105.0, 105.5, 104.4, 105.02}, // doji
	{106, 107.1, 105.9, 107},      // filler
	{108, 108.1, 106.9, 107},      // bearish
	{106.8, 108.4, 106.7, 108.3},  // bullish engulfing
	{109, 110.1, 108.9, 110},      // filler
	{110, 110.2, 107.8, 108},      // bearish
	{108, 108.3, 107.6, 107.9},    // star
	{108, 109.3, 107.9, 109.2},    // morning star
	{110, 111.1, 109.9, 111},      // filler
	{111, 112.1, 110.9, 112},      // filler
}

// SyntheticSeries returns a daily series starting at start with exactly
// one Hammer, Doji, Bullish Engulfing and Morning Star at the Synthetic*
// indices and no other pattern.
func SyntheticSeries(start time.Time) model.Series {
	s := make(model.Series, SyntheticLength)
	for i, b := range syntheticBars {
		s[i] = model.Candle{
			Time:   start.AddDate(0, 0, i),
			Open:   b[0],
			High:   b[1],
			Low:    b[2],
			Close:  b[3],
			Volume: 1000,
		}
	}
	return s
}

// SyntheticExpected returns the labels SyntheticSeries must classify to.
func SyntheticExpected() []model.Label {
	labels := make([]model.Label, SyntheticLength)
	for i := range labels {
		labels[i] = model.LabelNone
	}
	labels[SyntheticHammerIndex] = model.LabelHammer
	labels[SyntheticDojiIndex] = model.LabelDoji
	labels[SyntheticEngulfingIndex] = model.LabelBullishEngulfing
	labels[SyntheticMorningStarIndex] = model.LabelMorningStar
	return labels
}

// SyntheticFetcher serves SyntheticSeries for every symbol.
type SyntheticFetcher struct {
	Start time.Time
}

func (f *SyntheticFetcher) Name() string { return "synthetic" }

func (f *SyntheticFetcher) FetchBars(_ context.Context, _, _ string, limit int) (model.Series, error) {
	start := f.Start
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return sortAndTrim(SyntheticSeries(start), limit), nil
}
