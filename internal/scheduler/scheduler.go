package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PatternSentinel/internal/logger"
	"PatternSentinel/internal/metrics"
	"PatternSentinel/internal/model"
	"PatternSentinel/internal/notifier"
)

// Scanner fetches and classifies symbols.
type Scanner interface {
	Scan(ctx context.Context, symbol string) (*model.ScanResult, error)
	ScanAll(ctx context.Context, symbols []string) ([]*model.ScanResult, error)
}

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic scans and alerts on patterns that appear on the
// most recent candle of a symbol.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  Scanner
	Notifier Notifier // nil disables delivery
	Symbols  []string
	Ctx      context.Context

	mu      sync.Mutex
	alerted map[string]time.Time // symbol -> candle time of the last alert
	log     zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, scanner Scanner, n Notifier, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  scanner,
		Notifier: n,
		Symbols:  symbols,
		Ctx:      ctx,
		alerted:  make(map[string]time.Time),
		log:      logger.Component("scheduler"),
	}
}

// Register adds the scan task on the given six-field cron spec.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunScanNow executes the scan task immediately.
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	s.log.Info().Strs("symbols", s.Symbols).Msg("running scan task")
	results, err := s.Scanner.ScanAll(s.Ctx, s.Symbols)
	if err != nil {
		s.log.Error().Err(err).Msg("scan task finished with errors")
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		d, ok := res.Latest()
		if !ok || !s.markAlerted(res.Symbol, d.Time) {
			continue
		}
		s.log.Info().
			Str("symbol", res.Symbol).
			Str("pattern", string(d.Label)).
			Time("candle", d.Time).
			Msg("pattern on latest candle")
		s.trySend(notifier.FormatDetectionAlert(res.Symbol, res.Interval, d) + notifier.FormatMarketContext(res.Context))
	}
}

// markAlerted records an alert for (symbol, candle) and reports whether
// it is new.
func (s *Scheduler) markAlerted(symbol string, candle time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.alerted[symbol]; ok && !candle.After(last) {
		return false
	}
	s.alerted[symbol] = candle
	return true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/scan", "扫描":
		if len(fields) < 2 {
			return "用法: /scan SYMBOL"
		}
		res, err := s.Scanner.Scan(ctx, strings.ToUpper(fields[1]))
		if err != nil {
			return fmt.Sprintf("❌ 扫描失败: %v", err)
		}
		return notifier.FormatScanReport(res, 10)
	case "/patterns", "查看形态":
		results, err := s.Scanner.ScanAll(ctx, s.Symbols)
		if err != nil {
			s.log.Warn().Err(err).Msg("partial pattern summary")
		}
		return notifier.FormatPatternSummary(results, time.Now())
	default:
		return helpText
	}
}

const helpText = "可用命令:\n• /scan SYMBOL\n• /patterns (查看形态)"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		metrics.AlertsSent.WithLabelValues("disabled").Inc()
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		metrics.AlertsSent.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("send notification failed")
		return
	}
	metrics.AlertsSent.WithLabelValues("ok").Inc()
}
