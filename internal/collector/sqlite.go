package collector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"PatternSentinel/internal/model"
)

// SQLiteFetcher reads candles from a SQLite database populated by an
// external loader. Classification results are never written back.
type SQLiteFetcher struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteFetcher opens (or creates) the database and ensures the
// candles table exists.
func NewSQLiteFetcher(dbPath string) (*SQLiteFetcher, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the loader write while scans read.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	f := &SQLiteFetcher{db: db}
	if err := f.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("component", "collector").Str("path", dbPath).Msg("sqlite source opened")
	return f, nil
}

func (f *SQLiteFetcher) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candles (
			symbol    TEXT    NOT NULL,
			timeframe TEXT    NOT NULL,
			ts        INTEGER NOT NULL,
			open      REAL    NOT NULL,
			high      REAL    NOT NULL,
			low       REAL    NOT NULL,
			close     REAL    NOT NULL,
			volume    REAL    NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, timeframe, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candles_ts ON candles(symbol, timeframe, ts)`,
	}
	for _, s := range stmts {
		if _, err := f.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (f *SQLiteFetcher) Name() string { return "sqlite" }

func (f *SQLiteFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) (model.Series, error) {
	query := `SELECT ts, open, high, low, close, volume FROM candles
		WHERE symbol = ? AND timeframe = ? ORDER BY ts DESC`
	args := []any{symbol, interval}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var bars model.Series
	for rows.Next() {
		var ts int64
		var c model.Candle
		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Time = time.Unix(ts, 0).UTC()
		bars = append(bars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	return sortAndTrim(bars, limit), nil
}

// Upsert writes source bars for a symbol and interval. It is used by
// loaders and tests that seed the database.
func (f *SQLiteFetcher) Upsert(ctx context.Context, symbol, interval string, bars model.Series) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO candles
		(symbol, timeframe, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, interval, c.Time.Unix(),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert candle: %w", err)
		}
	}
	return tx.Commit()
}

func (f *SQLiteFetcher) Close() error {
	log.Info().Str("component", "collector").Msg("closing sqlite source")
	return f.db.Close()
}
