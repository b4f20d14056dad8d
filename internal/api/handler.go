package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"PatternSentinel/internal/collector"
	"PatternSentinel/internal/model"
)

type classifyRequest struct {
	Symbol   string       `json:"symbol"`
	Interval string       `json:"interval"`
	Candles  model.Series `json:"candles"`
}

type classifyResponse struct {
	RunID      string            `json:"run_id"`
	Labels     []model.Label     `json:"labels"`
	Detections []model.Detection `json:"detections"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     err.Error(),
		RequestID: c.GetString(RequestIDContextKey),
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *Handler) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Candles) > h.opts.MaxCandles {
		h.fail(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("too many candles: %d > %d", len(req.Candles), h.opts.MaxCandles))
		return
	}
	if req.Symbol == "" {
		req.Symbol = "adhoc"
	}

	res, err := h.analyzer.Analyze(req.Symbol, req.Interval, "request", req.Candles)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, classifyResponse{
		RunID:      res.RunID,
		Labels:     res.Labels,
		Detections: res.Detections,
	})
}

func (h *Handler) scan(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	interval := c.DefaultQuery("interval", h.opts.Interval)
	limit := h.opts.Limit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > h.opts.MaxCandles {
			h.fail(c, http.StatusBadRequest, fmt.Errorf("limit must be an integer in [0, %d]", h.opts.MaxCandles))
			return
		}
		limit = n
	}

	res, err := h.analyzer.ScanWindow(c.Request.Context(), symbol, interval, limit)
	switch {
	case errors.Is(err, collector.ErrEmptySymbol):
		h.fail(c, http.StatusBadRequest, err)
		return
	case errors.Is(err, collector.ErrUnorderedSeries):
		h.fail(c, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		h.log.Error().Err(err).Str("symbol", symbol).Msg("scan failed")
		h.fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
