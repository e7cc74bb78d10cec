package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dental-shop/internal/export"
	"dental-shop/internal/models"
	"dental-shop/internal/report"
	"dental-shop/internal/service"
	"dental-shop/internal/store"
	"dental-shop/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportService builds admin reports
type ReportService interface {
	SalesReport(ctx context.Context, tr models.TimeRange) (*service.SalesReport, error)
	OrdersReport(ctx context.Context, q service.OrdersQuery) (*service.OrdersReport, error)
	ExportOrders(ctx context.Context, tr models.TimeRange) ([]report.OrderView, error)
	CustomerSummary(ctx context.Context, customerID int64) (*service.CustomerSummary, error)
}

// AlertService derives the current alerts
type AlertService interface {
	GenerateAlerts(ctx context.Context) ([]models.Alert, error)
}

// CatalogService answers catalog stock queries
type CatalogService interface {
	ListByStock(ctx context.Context, filter models.StockFilter, limit int) ([]models.Product, error)
}

// OrderService applies admin changes
type OrderService interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, req *service.UpdateStatusRequest) (*service.UpdateStatusResponse, error)
	AdjustStock(ctx context.Context, productID int64, req *service.AdjustStockRequest) (*models.Product, error)
}

// ReadinessCheck reports whether a dependency is reachable
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	reports ReportService
	alerts  AlertService
	catalog CatalogService
	orders  OrderService
	checks  map[string]ReadinessCheck
	now     func() time.Time
}

// NewHandler creates a new HTTP handler
func NewHandler(reports ReportService, alerts AlertService, catalog CatalogService, orders OrderService) *Handler {
	return &Handler{
		reports: reports,
		alerts:  alerts,
		catalog: catalog,
		orders:  orders,
		checks:  make(map[string]ReadinessCheck),
		now:     time.Now,
	}
}

// AddReadinessCheck registers a dependency checked by /ready
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	{
		public.GET("/alerts", h.listAlerts)
		public.GET("/products/catalog", h.catalogByStock)
		public.GET("/customers/:id/summary", h.customerSummary)
	}

	admin := router.Group("/api/admin")
	{
		admin.GET("/reports/sales", h.salesReport)
		admin.GET("/reports/orders", h.ordersReport)
		admin.GET("/reports/orders/export", h.exportOrders)
		admin.PATCH("/orders/:id/status", h.updateOrderStatus)
		admin.PATCH("/products/:id/stock", h.adjustStock)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   h.now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   h.now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   h.now().Unix(),
	})
}

// listAlerts handles the alert feed
func (h *Handler) listAlerts(c *gin.Context) {
	alerts, err := h.alerts.GenerateAlerts(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load alerts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// catalogByStock handles catalog stock queries
func (h *Handler) catalogByStock(c *gin.Context) {
	filter, err := models.ParseStockFilter(c.Query("stock"))
	if err != nil {
		respondError(c, "Invalid stock filter", err)
		return
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondError(c, "Invalid limit", err)
		return
	}

	products, err := h.catalog.ListByStock(c.Request.Context(), filter, limit)
	if err != nil {
		respondError(c, "Failed to load products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// salesReport handles the sales report
func (h *Handler) salesReport(c *gin.Context) {
	tr, err := models.ParseTimeRange(c.Query("timeRange"))
	if err != nil {
		respondError(c, "Invalid time range", err)
		return
	}

	resp, err := h.reports.SalesReport(c.Request.Context(), tr)
	if err != nil {
		respondError(c, "Failed to build sales report", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ordersReport handles the order report
func (h *Handler) ordersReport(c *gin.Context) {
	q, err := parseOrdersQuery(c)
	if err != nil {
		respondError(c, "Invalid query", err)
		return
	}

	resp, err := h.reports.OrdersReport(c.Request.Context(), q)
	if err != nil {
		respondError(c, "Failed to build order report", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// exportOrders streams the orders of a time range as a file
func (h *Handler) exportOrders(c *gin.Context) {
	tr, err := models.ParseTimeRange(c.Query("timeRange"))
	if err != nil {
		respondError(c, "Invalid time range", err)
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, "Invalid export format", err)
		return
	}

	orders, err := h.reports.ExportOrders(c.Request.Context(), tr)
	if err != nil {
		respondError(c, "Failed to export orders", err)
		return
	}

	filename := export.Filename("orders-"+string(tr), format, h.now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)

	if err := export.Write(c.Writer, format, orders); err != nil {
		_ = c.Error(err)
	}
}

// updateOrderStatus handles admin status changes
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid order ID",
		})
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.orders.UpdateOrderStatus(c.Request.Context(), orderID, &req)
	if err != nil {
		respondError(c, "Failed to update order status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": resp})
}

// adjustStock handles admin stock changes
func (h *Handler) adjustStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid product ID",
		})
		return
	}

	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.orders.AdjustStock(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, "Failed to update stock", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// customerSummary handles the customer account overview
func (h *Handler) customerSummary(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid customer ID",
		})
		return
	}

	summary, err := h.reports.CustomerSummary(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, "Failed to load customer summary", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

func parseOrdersQuery(c *gin.Context) (service.OrdersQuery, error) {
	var q service.OrdersQuery
	var err error

	if q.TimeRange, err = models.ParseTimeRange(c.Query("timeRange")); err != nil {
		return q, err
	}
	if s := c.Query("status"); s != "" {
		if q.Status, err = models.ParseOrderStatus(s); err != nil {
			return q, err
		}
	}
	if q.Page, err = queryInt(c, "page", 1); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(c, "limit", service.DefaultPageSize); err != nil {
		return q, err
	}
	return q, nil
}

var errNotANumber = errors.New("must be an integer")

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %w", key, errNotANumber)
	}
	return n, nil
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidTimeRange),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidStockFilter),
		errors.Is(err, service.ErrInvalidStock),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, errNotANumber):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, msg string, err error) {
	c.JSON(statusFor(err), gin.H{
		"success": false,
		"error":   msg,
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
