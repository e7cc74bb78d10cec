package models

import (
	"encoding/json"
	"time"
)

// Product represents a product in the catalog
type Product struct {
	ID                int64      `db:"id" json:"id"`
	SKU               string     `db:"sku" json:"sku"`
	Name              string     `db:"name" json:"name"`
	Category          string     `db:"category" json:"category"`
	Price             float64    `db:"price" json:"price"`
	Stock             int        `db:"stock" json:"stock"`
	LowStockThreshold *int       `db:"low_stock_threshold" json:"lowStockThreshold,omitempty"`
	ExpiresAt         *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// Order represents a customer order.
// Items holds the raw item payload as persisted; older rows store it as a
// JSON-encoded string, newer ones as a native JSON array.
type Order struct {
	ID            int64           `db:"id" json:"id"`
	OrderNumber   string          `db:"order_number" json:"orderNumber"`
	CustomerID    int64           `db:"customer_id" json:"customerId"`
	CustomerEmail string          `db:"customer_email" json:"customerEmail"`
	Status        OrderStatus     `db:"status" json:"status"`
	Total         float64         `db:"total" json:"total"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	Items         json.RawMessage `db:"items" json:"items"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// OrderItem is a single line of an order's item payload
type OrderItem struct {
	ProductID int64   `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Category  string  `json:"category"`
}

// StockFilter selects catalog products by stock level
type StockFilter string

const (
	StockAll        StockFilter = ""
	StockInStock    StockFilter = "in_stock"
	StockLow        StockFilter = "low_stock"
	StockOutOfStock StockFilter = "out_of_stock"
)

// ParseStockFilter validates a catalog stock query value
func ParseStockFilter(s string) (StockFilter, error) {
	switch f := StockFilter(s); f {
	case StockAll, StockInStock, StockLow, StockOutOfStock:
		return f, nil
	}
	return "", ErrInvalidStockFilter
}
