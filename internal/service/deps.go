package service

import (
	"context"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/store"
)

// OrderStore is the part of the store the services read and write orders through
type OrderStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	ListOrdersPage(ctx context.Context, f store.OrderFilter) ([]models.Order, int, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.OrderStatus, error)
}

// ProductStore is the part of the store the services read and write products through
type ProductStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProductsByStock(ctx context.Context, filter models.StockFilter, defaultThreshold, limit int) ([]models.Product, error)
	ListAlertCandidates(ctx context.Context, defaultThreshold int, expiringBefore time.Time) ([]models.Product, error)
	UpdateProductStock(ctx context.Context, productID int64, stock int) error
}

// ReportCache stores encoded reports for a short time
type ReportCache interface {
	GetReport(ctx context.Context, key string) ([]byte, error)
	SetReport(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// EventPublisher publishes admin changes to the event bus
type EventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, orderID int64, from, to models.OrderStatus) error
	PublishStockChanged(ctx context.Context, productID int64, stock int) error
}

// Clock returns the current time
type Clock func() time.Time
