package models

import "time"

// Event types
const (
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeStockChanged       = "STOCK_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent published when an admin moves an order to a new status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64       `json:"order_id"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
}

// StockChangedEvent published when a product's stock level is adjusted
type StockChangedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
	Stock     int   `json:"stock"`
}
