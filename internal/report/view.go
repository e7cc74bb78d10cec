package report

import (
	"time"

	"dental-shop/internal/models"
)

// OrderView is an order with its item payload decoded, as listed and
// exported by the admin reports.
type OrderView struct {
	ID            int64              `json:"id"`
	OrderNumber   string             `json:"orderNumber"`
	CustomerID    int64              `json:"customerId"`
	CustomerEmail string             `json:"customerEmail"`
	Status        models.OrderStatus `json:"status"`
	StatusLabel   string             `json:"statusLabel"`
	Total         float64            `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	Items         []models.OrderItem `json:"items"`
	ItemCount     int                `json:"itemCount"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// Views decodes the item payload of each order. An order whose payload is
// malformed is still listed, with no items.
func (a *Aggregator) Views(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		items, ok := a.items(o)
		if !ok || items == nil {
			items = []models.OrderItem{}
		}
		out = append(out, OrderView{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CustomerID:    o.CustomerID,
			CustomerEmail: o.CustomerEmail,
			Status:        o.Status,
			StatusLabel:   o.Status.Label(),
			Total:         o.Total,
			PaymentMethod: o.PaymentMethod,
			Items:         items,
			ItemCount:     ItemQuantity(items),
			CreatedAt:     o.CreatedAt,
		})
	}
	return out
}
