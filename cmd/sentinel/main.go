package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"PatternSentinel/internal/api"
	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/config"
	"PatternSentinel/internal/logger"
	"PatternSentinel/internal/notifier"
	"PatternSentinel/internal/pattern"
	"PatternSentinel/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Init(api.ServiceName, "info", false)
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(api.ServiceName, cfg.Log.Level, cfg.Log.Pretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("PatternSentinel starting")

	fetcher, err := collector.NewFetcher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init data source")
	}
	if c, ok := fetcher.(io.Closer); ok {
		defer c.Close()
	}
	log.Info().Str("source", fetcher.Name()).Strs("symbols", cfg.Symbols).Msg("data source ready")

	col := collector.NewCollector(fetcher, pattern.New(cfg.Pattern), cfg.DataSource.Interval, cfg.DataSource.Limit)
	col.Concurrency = cfg.Schedule.Concurrency

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Warn().Msg("telegram credentials missing, alerts are logged only")
	}

	sched := scheduler.NewScheduler(ctx, col, n, cfg.Symbols)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	h := api.NewHandler(col, api.Options{
		MaxCandles: cfg.Server.MaxCandles,
		RateLimit:  cfg.Server.RateLimit,
		RateBurst:  cfg.Server.RateBurst,
		Interval:   cfg.DataSource.Interval,
		Limit:      cfg.DataSource.Limit,
	})
	srv := h.NewServer(cfg.Server.Addr)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			cancel()
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning now")
		go sched.RunScanNow()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	cancel()
	log.Info().Msg("PatternSentinel stopped")
}
