package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"PatternSentinel/internal/logger"
	"PatternSentinel/internal/model"
)

const (
	ServiceName         = "pattern-sentinel"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
	DefaultMaxCandles   = 10000
)

// Analyzer classifies posted series and scans symbols on demand.
type Analyzer interface {
	Analyze(symbol, interval, source string, bars model.Series) (*model.ScanResult, error)
	ScanWindow(ctx context.Context, symbol, interval string, limit int) (*model.ScanResult, error)
}

// Options tunes request limits.
type Options struct {
	MaxCandles int
	RateLimit  float64 // requests per second, <= 0 disables limiting
	RateBurst  int
	Interval   string // default scan interval
	Limit      int    // default scan limit
}

// Handler serves the HTTP API.
type Handler struct {
	analyzer Analyzer
	opts     Options
	limiter  *rate.Limiter
	started  time.Time
	log      zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(analyzer Analyzer, opts Options) *Handler {
	if opts.MaxCandles <= 0 {
		opts.MaxCandles = DefaultMaxCandles
	}
	if opts.Interval == "" {
		opts.Interval = "1d"
	}
	h := &Handler{
		analyzer: analyzer,
		opts:     opts,
		started:  time.Now(),
		log:      logger.Component("api"),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return h
}

// Router builds the gin engine with all routes and middleware.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestIDMiddleware(), h.loggingMiddleware())

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(h.rateLimitMiddleware())
	v1.POST("/classify", h.classify)
	v1.GET("/scan/:symbol", h.scan)
	return r
}

// NewServer wraps the router in an http.Server.
func (h *Handler) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
