package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Total number of reports computed from the order store",
	}, []string{"kind"})

	ReportGenerationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_generation_latency_seconds",
		Help:    "Latency of report queries and aggregation",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	ReportCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_cache_hits_total",
		Help: "Total number of reports served from cache",
	}, []string{"kind"})

	ReportCacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_cache_misses_total",
		Help: "Total number of report cache misses",
	}, []string{"kind"})

	ReportCacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "report_cache_evictions_total",
		Help: "Total number of report cache invalidations",
	})

	OrderItemParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_item_parse_failures_total",
		Help: "Total number of order item payloads skipped as malformed",
	})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Total number of admin order status changes",
	}, []string{"to"})

	AlertsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_generated_total",
		Help: "Total number of alerts derived from stock levels",
	}, []string{"type"})

	StockAdjustmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of product stock adjustments",
	})

	StockAlertLevelsReachedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alert_levels_reached_total",
		Help: "Total number of stock changes that left a product at an alert level",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
