package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PatternSentinel/internal/config"
	"PatternSentinel/internal/model"
)

// ErrUnknownSource is returned for an unsupported data source kind.
var ErrUnknownSource = errors.New("unknown data source")

// Fetcher supplies candle series for a symbol. Implementations return
// bars sorted by time, oldest first, trimmed to at most limit bars
// (limit <= 0 means no trimming).
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, interval string, limit int) (model.Series, error)
	Name() string
}

var (
	_ Fetcher = (*YahooFetcher)(nil)
	_ Fetcher = (*CSVFetcher)(nil)
	_ Fetcher = (*RESTFetcher)(nil)
	_ Fetcher = (*SQLiteFetcher)(nil)
	_ Fetcher = (*MockFetcher)(nil)
	_ Fetcher = (*SyntheticFetcher)(nil)
)

// NewFetcher builds the fetcher selected by cfg.DataSource.Kind.
func NewFetcher(cfg *config.Config) (Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Kind {
	case config.SourceYahoo:
		return NewYahooFetcher(cfg.Proxy, ds.RequestsPerSecond), nil
	case config.SourceCSV:
		return NewCSVFetcher(ds.CSVPath, ds.CSVColumnPrefix, cfg.Proxy), nil
	case config.SourceREST:
		return NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy), nil
	case config.SourceSQLite:
		f, err := NewSQLiteFetcher(ds.SQLitePath)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.SourceMock:
		return NewMockFetcher(100, time.Now().UnixNano()), nil
	case config.SourceSynthetic:
		return &SyntheticFetcher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, ds.Kind)
	}
}

// newHTTPClient creates a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// sortAndTrim orders bars chronologically and keeps the newest limit bars.
func sortAndTrim(bars model.Series, limit int) model.Series {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars
}
