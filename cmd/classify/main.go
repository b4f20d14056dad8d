package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"

	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/logger"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file")
	source := flag.String("source", "", "data source kind, overrides config (yahoo, csv, rest, sqlite, mock, synthetic)")
	csvPath := flag.String("csv", "", "CSV file or URL, implies -source csv")
	csvPrefix := flag.String("csv-prefix", "", "column prefix in the CSV header, e.g. AAPL.")
	symbol := flag.String("symbol", "", "symbol to classify (default: first configured symbol)")
	interval := flag.String("interval", "", "bar interval, overrides config")
	limit := flag.Int("limit", -1, "number of most recent bars, 0 for all (default: config value)")
	asJSON := flag.Bool("json", false, "print the scan result as JSON")
	all := flag.Bool("all", false, "print every candle, not only detections")
	saveTo := flag.String("save-sqlite", "", "also store the fetched bars in this SQLite file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Init("pattern-classify", "info", true)
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init("pattern-classify", cfg.Log.Level, true)

	if *csvPath != "" {
		if *csvPath != cfg.DataSource.CSVPath {
			cfg.DataSource.CSVColumnPrefix = ""
		}
		cfg.DataSource.Kind = config.SourceCSV
		cfg.DataSource.CSVPath = *csvPath
	}
	if *csvPrefix != "" {
		cfg.DataSource.CSVColumnPrefix = *csvPrefix
	}
	if *source != "" {
		cfg.DataSource.Kind = strings.ToLower(*source)
	}
	if *interval != "" {
		cfg.DataSource.Interval = *interval
	}
	if *limit >= 0 {
		cfg.DataSource.Limit = *limit
	}
	cfg.ApplySourceDefaults()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	sym := *symbol
	if sym == "" {
		sym = cfg.Symbols[0]
	}

	fetcher, err := collector.NewFetcher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init data source")
	}
	if c, ok := fetcher.(io.Closer); ok {
		defer c.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	col := collector.NewCollector(fetcher, pattern.New(cfg.Pattern), cfg.DataSource.Interval, cfg.DataSource.Limit)
	res, err := col.Scan(ctx, sym)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", sym).Msg("scan failed")
	}

	if *saveTo != "" {
		if err := save(ctx, *saveTo, res); err != nil {
			log.Fatal().Err(err).Msg("save bars")
		}
		log.Info().Str("path", *saveTo).Int("bars", len(res.Candles)).Msg("bars stored")
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal().Err(err).Msg("encode result")
		}
		return
	}
	printTable(os.Stdout, res, *all)
}

func save(ctx context.Context, path string, res *model.ScanResult) error {
	db, err := collector.NewSQLiteFetcher(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Upsert(ctx, res.Symbol, res.Interval, res.Candles)
}

func printTable(w io.Writer, res *model.ScanResult, all bool) {
	fmt.Fprintf(w, "%s %s via %s: %d candles, %d detections\n\n",
		res.Symbol, res.Interval, res.Source, len(res.Candles), len(res.Detections))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tOPEN\tHIGH\tLOW\tCLOSE\tPATTERN")
	for i, c := range res.Candles {
		label := res.Labels[i]
		if !all && !label.IsPattern() {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			i, c.Time.Format("2006-01-02 15:04"), c.Open, c.High, c.Low, c.Close, label)
	}
	tw.Flush()

	counts := pattern.Count(res.Labels)
	fmt.Fprintln(w)
	for _, l := range model.Labels {
		fmt.Fprintf(w, "%-18s %d\n", l, counts[l])
	}
}
