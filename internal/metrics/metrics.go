package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pattern_scans_total",
			Help: "Total number of symbol scans",
		},
		[]string{"symbol", "status"},
	)

	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pattern_detections_total",
			Help: "Total number of detected candle patterns",
		},
		[]string{"symbol", "pattern"},
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pattern_scan_duration_seconds",
			Help:    "Time spent fetching and classifying one symbol",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pattern_alerts_sent_total",
			Help: "Pattern alerts delivered to the notifier",
		},
		[]string{"status"},
	)
)
