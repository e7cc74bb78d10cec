package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/report"
	"dental-shop/internal/service"
	"dental-shop/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

type fakeServices struct {
	alerts   []models.Alert
	products []models.Product
	views    []report.OrderView
	err      error

	gotRange  models.TimeRange
	gotQuery  service.OrdersQuery
	gotFilter models.StockFilter
	gotLimit  int
	gotStatus string
}

func (f *fakeServices) SalesReport(ctx context.Context, tr models.TimeRange) (*service.SalesReport, error) {
	f.gotRange = tr
	if f.err != nil {
		return nil, f.err
	}
	return &service.SalesReport{Success: true, TimeRange: tr, Metrics: service.SalesMetrics{TotalOrders: 2, TotalRevenue: 150}}, nil
}

func (f *fakeServices) OrdersReport(ctx context.Context, q service.OrdersQuery) (*service.OrdersReport, error) {
	f.gotQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &service.OrdersReport{Success: true, Orders: f.views}, nil
}

func (f *fakeServices) ExportOrders(ctx context.Context, tr models.TimeRange) ([]report.OrderView, error) {
	f.gotRange = tr
	return f.views, f.err
}

func (f *fakeServices) CustomerSummary(ctx context.Context, customerID int64) (*service.CustomerSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.CustomerSummary{CustomerID: customerID, TotalOrders: 3}, nil
}

func (f *fakeServices) GenerateAlerts(ctx context.Context) ([]models.Alert, error) {
	return f.alerts, f.err
}

func (f *fakeServices) ListByStock(ctx context.Context, filter models.StockFilter, limit int) ([]models.Product, error) {
	f.gotFilter = filter
	f.gotLimit = limit
	return f.products, f.err
}

func (f *fakeServices) UpdateOrderStatus(ctx context.Context, orderID int64, req *service.UpdateStatusRequest) (*service.UpdateStatusResponse, error) {
	f.gotStatus = req.Status
	if f.err != nil {
		return nil, f.err
	}
	st, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return &service.UpdateStatusResponse{OrderID: orderID, PreviousStatus: models.OrderStatusPending, Status: st}, nil
}

func (f *fakeServices) AdjustStock(ctx context.Context, productID int64, req *service.AdjustStockRequest) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if *req.Stock < 0 {
		return nil, service.ErrInvalidStock
	}
	return &models.Product{ID: productID, Stock: *req.Stock}, nil
}

func setupRouter(f *fakeServices) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(f, f, f, f)
	h.now = func() time.Time { return now }
	h.SetupRoutes(router)
	return router, h
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(&fakeServices{})

	w := do(router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestReadiness(t *testing.T) {
	router, h := setupRouter(&fakeServices{})
	h.AddReadinessCheck("database", func(ctx context.Context) error { return nil })

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/ready", "").Code)

	h.AddReadinessCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	w := do(router, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, map[string]interface{}{"redis": "connection refused"}, decode(t, w)["failed"])
}

func TestListAlerts(t *testing.T) {
	router, _ := setupRouter(&fakeServices{alerts: []models.Alert{
		{ID: "out_of_stock-7", Type: models.AlertTypeOutOfStock, Severity: models.SeverityCritical, ProductID: 7},
	}})

	w := do(router, http.MethodGet, "/api/alerts", "")

	require.Equal(t, http.StatusOK, w.Code)
	alerts := decode(t, w)["alerts"].([]interface{})
	require.Len(t, alerts, 1)
	assert.Equal(t, "out_of_stock-7", alerts[0].(map[string]interface{})["id"])
}

func TestListAlertsFailure(t *testing.T) {
	router, _ := setupRouter(&fakeServices{err: errors.New("db down")})

	w := do(router, http.MethodGet, "/api/alerts", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestCatalogByStock(t *testing.T) {
	f := &fakeServices{products: []models.Product{{ID: 1, Name: "Gloves", Stock: 2}}}
	router, _ := setupRouter(f)

	w := do(router, http.MethodGet, "/api/products/catalog?stock=low_stock&limit=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StockLow, f.gotFilter)
	assert.Equal(t, 5, f.gotLimit)
	assert.Len(t, decode(t, w)["products"], 1)
}

func TestCatalogRejectsBadInput(t *testing.T) {
	router, _ := setupRouter(&fakeServices{})

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/products/catalog?stock=plenty", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/products/catalog?limit=ten", "").Code)
}

func TestSalesReport(t *testing.T) {
	f := &fakeServices{}
	router, _ := setupRouter(f)

	w := do(router, http.MethodGet, "/api/admin/reports/sales?timeRange=90d", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TimeRange90d, f.gotRange)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 150.0, body["metrics"].(map[string]interface{})["totalRevenue"])
}

func TestSalesReportDefaultsAndErrors(t *testing.T) {
	f := &fakeServices{}
	router, _ := setupRouter(f)

	require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/admin/reports/sales", "").Code)
	assert.Equal(t, models.DefaultTimeRange, f.gotRange)

	w := do(router, http.MethodGet, "/api/admin/reports/sales?timeRange=2w", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid time range", decode(t, w)["error"])
}

func TestOrdersReportQuery(t *testing.T) {
	f := &fakeServices{}
	router, _ := setupRouter(f)

	w := do(router, http.MethodGet, "/api/admin/reports/orders?timeRange=7d&status=shipped&page=3&limit=50", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.OrdersQuery{
		TimeRange: models.TimeRange7d,
		Status:    models.OrderStatusShipped,
		Page:      3,
		Limit:     50,
	}, f.gotQuery)
}

func TestOrdersReportRejectsUnknownStatus(t *testing.T) {
	router, _ := setupRouter(&fakeServices{})

	w := do(router, http.MethodGet, "/api/admin/reports/orders?status=lost", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportOrdersCSV(t *testing.T) {
	router, _ := setupRouter(&fakeServices{views: []report.OrderView{{
		OrderNumber:   "ORD-1",
		CustomerEmail: "a@example.com",
		Status:        models.OrderStatusCompleted,
		Total:         12,
		ItemCount:     3,
		PaymentMethod: "card",
		CreatedAt:     now,
	}}})

	w := do(router, http.MethodGet, "/api/admin/reports/orders/export?timeRange=7d", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-7d-2026-03-15.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Order Number,Customer Email,Status,Total,Items,Date,Payment Method", lines[0])
	assert.Equal(t, "ORD-1,a@example.com,COMPLETED,12.00,3,2026-03-15 10:30:00,card", lines[1])
}

func TestExportOrdersJSONAndBadFormat(t *testing.T) {
	router, _ := setupRouter(&fakeServices{})

	w := do(router, http.MethodGet, "/api/admin/reports/orders/export?format=json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "[]", w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/admin/reports/orders/export?format=pdf", "").Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := &fakeServices{}
	router, _ := setupRouter(f)

	w := do(router, http.MethodPatch, "/api/admin/orders/12/status", `{"status":"SHIPPED"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SHIPPED", f.gotStatus)
	order := decode(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "SHIPPED", order["status"])
	assert.Equal(t, 12.0, order["orderId"])
}

func TestUpdateOrderStatusErrors(t *testing.T) {
	router, _ := setupRouter(&fakeServices{})

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPatch, "/api/admin/orders/abc/status", `{"status":"SHIPPED"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPatch, "/api/admin/orders/1/status", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPatch, "/api/admin/orders/1/status", `{"status":"LOST"}`).Code)

	missing, _ := setupRouter(&fakeServices{err: fmt.Errorf("order 1: %w", store.ErrNotFound)})
	assert.Equal(t, http.StatusNotFound, do(missing, http.MethodPatch, "/api/admin/orders/1/status", `{"status":"SHIPPED"}`).Code)
}

func TestAdjustStock(t *testing.T) {
	router, _ := setupRouter(&fakeServices{})

	w := do(router, http.MethodPatch, "/api/admin/products/4/stock", `{"stock":15}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 15.0, decode(t, w)["product"].(map[string]interface{})["stock"])

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPatch, "/api/admin/products/4/stock", `{"stock":-3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPatch, "/api/admin/products/4/stock", `{}`).Code)
}

func TestCustomerSummary(t *testing.T) {
	router, _ := setupRouter(&fakeServices{})

	w := do(router, http.MethodGet, "/api/customers/7/summary", "")

	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]interface{})
	assert.Equal(t, 7.0, summary["customerId"])
	assert.Equal(t, 3.0, summary["totalOrders"])
}
