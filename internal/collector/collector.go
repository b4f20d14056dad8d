package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"PatternSentinel/internal/calculator"
	"PatternSentinel/internal/logger"
	"PatternSentinel/internal/metrics"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
)

var (
	// ErrUnorderedSeries is returned when timestamps are not strictly increasing.
	ErrUnorderedSeries = errors.New("series timestamps are not strictly increasing")
	// ErrEmptySymbol is returned when a scan is requested without a symbol.
	ErrEmptySymbol = errors.New("symbol is required")
)

// Collector orchestrates fetching and classification.
type Collector struct {
	Fetcher     Fetcher
	Classifier  *pattern.Classifier
	Interval    string
	Limit       int
	Concurrency int

	log zerolog.Logger
}

// NewCollector creates a new Collector. A nil classifier uses the default
// thresholds.
func NewCollector(fetcher Fetcher, classifier *pattern.Classifier, interval string, limit int) *Collector {
	if classifier == nil {
		classifier = pattern.New(pattern.DefaultThresholds())
	}
	return &Collector{
		Fetcher:     fetcher,
		Classifier:  classifier,
		Interval:    interval,
		Limit:       limit,
		Concurrency: 4,
		log:         logger.Component("collector"),
	}
}

// Scan fetches the configured window for symbol and classifies it.
func (c *Collector) Scan(ctx context.Context, symbol string) (*model.ScanResult, error) {
	return c.ScanWindow(ctx, symbol, c.Interval, c.Limit)
}

// ScanWindow is Scan with an explicit interval and limit.
func (c *Collector) ScanWindow(ctx context.Context, symbol, interval string, limit int) (*model.ScanResult, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	start := time.Now()
	defer func() {
		metrics.ScanDuration.WithLabelValues(c.Fetcher.Name()).Observe(time.Since(start).Seconds())
	}()

	bars, err := c.Fetcher.FetchBars(ctx, symbol, interval, limit)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(symbol, "fetch_error").Inc()
		return nil, fmt.Errorf("fetch %s bars: %w", symbol, err)
	}

	result, err := c.Analyze(symbol, interval, c.Fetcher.Name(), bars)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(symbol, "invalid").Inc()
		return nil, err
	}
	metrics.ScansTotal.WithLabelValues(symbol, "ok").Inc()
	return result, nil
}

// Analyze classifies a series that was obtained elsewhere. The series must
// be strictly increasing by time.
func (c *Collector) Analyze(symbol, interval, source string, bars model.Series) (*model.ScanResult, error) {
	if idx := calculator.ValidateOrder(bars); idx >= 0 {
		return nil, fmt.Errorf("%w: index %d (%s)", ErrUnorderedSeries, idx, bars[idx].Time.Format(time.RFC3339))
	}

	malformed := 0
	for _, b := range bars {
		if !calculator.IsWellFormed(b) {
			malformed++
		}
	}

	labels := c.Classifier.Classify(bars)
	detections := pattern.Detect(bars, labels)
	for _, d := range detections {
		metrics.DetectionsTotal.WithLabelValues(symbol, string(d.Label)).Inc()
	}

	result := &model.ScanResult{
		RunID:      uuid.NewString(),
		Symbol:     symbol,
		Interval:   interval,
		Source:     source,
		Candles:    bars,
		Labels:     labels,
		Detections: detections,
		Context:    calculator.Context(bars),
		ScannedAt:  time.Now().UTC(),
	}

	ev := c.log.Info()
	if malformed > 0 {
		ev = c.log.Warn().Int("malformed", malformed)
	}
	ev.Str("run_id", result.RunID).
		Str("symbol", symbol).
		Str("source", source).
		Int("candles", len(bars)).
		Int("detections", len(detections)).
		Msg("series classified")
	return result, nil
}

// ScanAll scans symbols in parallel, at most Concurrency at a time.
// Results are aligned with symbols; a failed symbol leaves a nil entry and
// contributes to the joined error.
func (c *Collector) ScanAll(ctx context.Context, symbols []string) ([]*model.ScanResult, error) {
	results := make([]*model.ScanResult, len(symbols))
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			res, err := c.Scan(ctx, sym)
			if err != nil {
				c.log.Warn().Err(err).Str("symbol", sym).Msg("scan failed")
				mu.Lock()
				errs = append(errs, fmt.Errorf("scan %s: %w", sym, err))
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, errors.Join(errs...)
}
