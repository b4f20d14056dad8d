package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"PatternSentinel/internal/model"
)

// CSVFetcher reads OHLC bars from a CSV file or an HTTP(S) URL.
// Columns are matched by name: Date (or Time/Timestamp), and Open, High,
// Low, Close, Volume prefixed by ColumnPrefix (e.g. "AAPL."). If a Symbol
// column exists only matching rows are returned. The interval argument is
// ignored; the file is taken as-is.
type CSVFetcher struct {
	Path         string
	ColumnPrefix string
	Client       *http.Client
}

// NewCSVFetcher creates a CSV fetcher for a local path or URL.
func NewCSVFetcher(path, columnPrefix, proxyURL string) *CSVFetcher {
	return &CSVFetcher{
		Path:         path,
		ColumnPrefix: columnPrefix,
		Client:       newHTTPClient(proxyURL),
	}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchBars(ctx context.Context, symbol, _ string, limit int) (model.Series, error) {
	rc, err := f.open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	bars, err := ParseCSV(rc, f.ColumnPrefix, symbol)
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", f.Path, err)
	}
	return sortAndTrim(bars, limit), nil
}

func (f *CSVFetcher) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(f.Path, "http://") && !strings.HasPrefix(f.Path, "https://") {
		file, err := os.Open(f.Path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		return file, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csv: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch csv: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

var csvTimeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Treat 13-digit values as milliseconds.
		if secs > 1e12 {
			return time.UnixMilli(secs).UTC(), nil
		}
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// ParseCSV decodes OHLC rows. symbol filters rows when the file has a
// Symbol column; it is ignored otherwise.
func ParseCSV(r io.Reader, columnPrefix, symbol string) (model.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	find := func(names ...string) int {
		for _, n := range names {
			if idx, ok := cols[strings.ToLower(n)]; ok {
				return idx
			}
		}
		return -1
	}
	timeCol := find("Date", "Time", "Timestamp", "Datetime")
	openCol := find(columnPrefix+"Open", "Open")
	highCol := find(columnPrefix+"High", "High")
	lowCol := find(columnPrefix+"Low", "Low")
	closeCol := find(columnPrefix+"Close", "Close")
	volumeCol := find(columnPrefix+"Volume", "Volume")
	symbolCol := find("Symbol", "Ticker")
	if timeCol < 0 || openCol < 0 || highCol < 0 || lowCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("missing required columns in header %v", header)
	}

	var bars model.Series
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if symbolCol >= 0 && symbol != "" && !strings.EqualFold(rec[symbolCol], symbol) {
			continue
		}

		ts, err := parseCSVTime(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var vals [4]float64
		for i, col := range []int{openCol, highCol, lowCol, closeCol} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: %w", line, header[col], err)
			}
			vals[i] = v
		}
		c := model.Candle{Time: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}
		if volumeCol >= 0 {
			c.Volume, _ = strconv.ParseFloat(strings.TrimSpace(rec[volumeCol]), 64)
		}
		bars = append(bars, c)
	}
	return bars, nil
}
