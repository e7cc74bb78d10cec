package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/redisclient"
	"dental-shop/internal/report"
	"dental-shop/internal/store"
	"dental-shop/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ReportOptions tunes report generation
type ReportOptions struct {
	// CacheTTL is how long a sales report is served from cache
	CacheTTL time.Duration
	// RefreshInterval is the dashboard polling interval advertised to clients
	RefreshInterval time.Duration
	// DayCap bounds the number of daily trend buckets
	DayCap int
}

// ReportService builds the admin sales and order reports
type ReportService struct {
	orders     OrderStore
	cache      ReportCache
	aggregator *report.Aggregator
	opts       ReportOptions
	now        Clock
	logger     *zap.Logger
}

// NewReportService creates a new report service. cache may be nil, in which
// case every report is computed from the store.
func NewReportService(orders OrderStore, cache ReportCache, opts ReportOptions) *ReportService {
	logger := util.Named("reports")
	return &ReportService{
		orders:     orders,
		cache:      cache,
		aggregator: report.NewAggregator(logger),
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// SalesMetrics are the headline figures of the sales report
type SalesMetrics struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int     `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	RevenueGrowth     float64 `json:"revenueGrowth"`
	OrdersGrowth      float64 `json:"ordersGrowth"`
	CompletedOrders   int     `json:"completedOrders"`
	PendingOrders     int     `json:"pendingOrders"`
	ProcessingOrders  int     `json:"processingOrders"`
	ShippedOrders     int     `json:"shippedOrders"`
	CancelledOrders   int     `json:"cancelledOrders"`
}

// SalesReport is the response of GET /api/admin/reports/sales
type SalesReport struct {
	Success             bool                   `json:"success"`
	TimeRange           models.TimeRange       `json:"timeRange"`
	Metrics             SalesMetrics           `json:"metrics"`
	SalesByCategory     []report.CategoryShare `json:"salesByCategory"`
	MonthlyTrends       []report.Bucket        `json:"monthlyTrends"`
	PaymentDistribution []report.PaymentShare  `json:"paymentDistribution"`
	GeneratedAt         time.Time              `json:"generatedAt"`
	RefreshInterval     int                    `json:"refreshInterval"`
}

// SalesReport returns the sales report for a time range, from cache when a
// fresh copy exists.
func (s *ReportService) SalesReport(ctx context.Context, tr models.TimeRange) (*SalesReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.SalesReport", attribute.String("time_range", string(tr)))
	defer span.End()

	key := "sales:" + string(tr)
	var cached SalesReport
	if s.cacheGet(ctx, "sales", key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	defer func() {
		util.ReportGenerationLatency.WithLabelValues("sales").Observe(time.Since(start).Seconds())
	}()

	now := s.now()
	periodStart := tr.Start(now)
	orders, err := s.orders.ListOrdersBetween(ctx, tr.PreviousStart(now), now)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var current, previous []models.Order
	for _, o := range orders {
		if o.CreatedAt.Before(periodStart) {
			previous = append(previous, o)
		} else {
			current = append(current, o)
		}
	}

	agg := s.aggregator.Aggregate(current, report.Month, tr.MonthBuckets(now), now)
	prev := report.Summarize(previous)

	resp := &SalesReport{
		Success:   true,
		TimeRange: tr,
		Metrics: SalesMetrics{
			TotalRevenue:      agg.Summary.TotalRevenue,
			TotalOrders:       agg.Summary.TotalOrders,
			AverageOrderValue: agg.Summary.AverageOrderValue,
			RevenueGrowth:     report.Growth(agg.Summary.TotalRevenue, prev.TotalRevenue),
			OrdersGrowth:      report.Growth(float64(agg.Summary.TotalOrders), float64(prev.TotalOrders)),
			CompletedOrders:   agg.Summary.CompletedOrders,
			PendingOrders:     agg.Summary.PendingOrders,
			ProcessingOrders:  agg.Summary.ProcessingOrders,
			ShippedOrders:     agg.Summary.ShippedOrders,
			CancelledOrders:   agg.Summary.CancelledOrders,
		},
		SalesByCategory:     agg.Categories,
		MonthlyTrends:       agg.Trends,
		PaymentDistribution: report.PaymentDistribution(current),
		GeneratedAt:         now,
		RefreshInterval:     int(s.opts.RefreshInterval.Seconds()),
	}

	util.ReportsGeneratedTotal.WithLabelValues("sales").Inc()
	s.cacheSet(ctx, key, resp)
	return resp, nil
}

// OrdersQuery selects the order report
type OrdersQuery struct {
	TimeRange models.TimeRange
	Status    models.OrderStatus
	Page      int
	Limit     int
}

// Normalize applies the paging defaults and bounds
func (q *OrdersQuery) Normalize() {
	if q.TimeRange == "" {
		q.TimeRange = models.DefaultTimeRange
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
}

// Pagination describes the page returned by the order report
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// OrdersReport is the response of GET /api/admin/reports/orders
type OrdersReport struct {
	Success            bool                 `json:"success"`
	TimeRange          models.TimeRange     `json:"timeRange"`
	Orders             []report.OrderView   `json:"orders"`
	Summary            report.Summary       `json:"summary"`
	DailyTrends        []report.Bucket      `json:"dailyTrends"`
	StatusDistribution []report.StatusShare `json:"statusDistribution"`
	Pagination         Pagination           `json:"pagination"`
}

// OrdersReport returns one page of orders together with figures for the
// whole time range. The status filter only narrows the page.
func (s *ReportService) OrdersReport(ctx context.Context, q OrdersQuery) (*OrdersReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.OrdersReport",
		attribute.String("time_range", string(q.TimeRange)),
		attribute.String("status", string(q.Status)))
	defer span.End()

	q.Normalize()

	start := time.Now()
	defer func() {
		util.ReportGenerationLatency.WithLabelValues("orders").Observe(time.Since(start).Seconds())
	}()

	now := s.now()
	from := q.TimeRange.Start(now)

	all, err := s.orders.ListOrdersBetween(ctx, from, now)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	page, total, err := s.orders.ListOrdersPage(ctx, store.OrderFilter{
		From:   from,
		Status: q.Status,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	days := q.TimeRange.DayBuckets()
	if s.opts.DayCap > 0 && days > s.opts.DayCap {
		days = s.opts.DayCap
	}

	util.ReportsGeneratedTotal.WithLabelValues("orders").Inc()
	return &OrdersReport{
		Success:            true,
		TimeRange:          q.TimeRange,
		Orders:             s.aggregator.Views(page),
		Summary:            report.Summarize(all),
		DailyTrends:        report.Buckets(all, report.Day, days, now),
		StatusDistribution: report.StatusDistribution(all),
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: (total + q.Limit - 1) / q.Limit,
		},
	}, nil
}

// ExportOrders returns every order of the time range for export
func (s *ReportService) ExportOrders(ctx context.Context, tr models.TimeRange) ([]report.OrderView, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.ExportOrders", attribute.String("time_range", string(tr)))
	defer span.End()

	now := s.now()
	orders, err := s.orders.ListOrdersBetween(ctx, tr.Start(now), now)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	util.ReportsGeneratedTotal.WithLabelValues("export").Inc()
	return s.aggregator.Views(orders), nil
}

// CustomerSummary is the account overview of one customer
type CustomerSummary struct {
	CustomerID        int64                 `json:"customerId"`
	TotalOrders       int                   `json:"totalOrders"`
	TotalSpent        float64               `json:"totalSpent"`
	AverageOrderValue float64               `json:"averageOrderValue"`
	PendingOrders     int                   `json:"pendingOrders"`
	CompletedOrders   int                   `json:"completedOrders"`
	FavoriteProducts  []report.ProductShare `json:"favoriteProducts"`
	LastOrderAt       *time.Time            `json:"lastOrderAt,omitempty"`
}

// CustomerSummary totals a customer's orders and ranks the products they
// buy most.
func (s *ReportService) CustomerSummary(ctx context.Context, customerID int64) (*CustomerSummary, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.CustomerSummary", attribute.Int64("customer_id", customerID))
	defer span.End()

	orders, err := s.orders.ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load customer orders: %w", err)
	}

	sum := report.Summarize(orders)
	out := &CustomerSummary{
		CustomerID:        customerID,
		TotalOrders:       sum.TotalOrders,
		TotalSpent:        sum.TotalRevenue,
		AverageOrderValue: sum.AverageOrderValue,
		PendingOrders:     sum.PendingOrders,
		CompletedOrders:   sum.CompletedOrders,
		FavoriteProducts:  s.aggregator.FavoriteProducts(orders, report.TopProducts),
	}
	for _, o := range orders {
		if out.LastOrderAt == nil || o.CreatedAt.After(*out.LastOrderAt) {
			t := o.CreatedAt
			out.LastOrderAt = &t
		}
	}

	util.ReportsGeneratedTotal.WithLabelValues("customer").Inc()
	return out, nil
}

// cacheGet decodes a cached report into dst. Any cache failure counts as a miss.
func (s *ReportService) cacheGet(ctx context.Context, kind, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}

	data, err := s.cache.GetReport(ctx, key)
	if err != nil {
		if !errors.Is(err, redisclient.ErrCacheMiss) {
			s.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		}
		util.ReportCacheMissesTotal.WithLabelValues(kind).Inc()
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("Discarding undecodable cached report", zap.String("key", key), zap.Error(err))
		util.ReportCacheMissesTotal.WithLabelValues(kind).Inc()
		return false
	}

	util.ReportCacheHitsTotal.WithLabelValues(kind).Inc()
	return true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Failed to encode report for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.SetReport(ctx, key, data, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
