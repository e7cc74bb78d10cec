package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/redisclient"
	"dental-shop/internal/store"
)

var now = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

type fakeStore struct {
	mu       sync.Mutex
	orders   []models.Order
	products []models.Product
	pending  int
	err      error

	rangeCalls int
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	f.mu.Lock()
	f.rangeCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Order{}
	for _, o := range f.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListOrdersPage(ctx context.Context, flt store.OrderFilter) ([]models.Order, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	matched := []models.Order{}
	for _, o := range f.orders {
		if o.CreatedAt.Before(flt.From) {
			continue
		}
		if flt.Status != "" && o.Status != flt.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if flt.Offset >= total {
		return []models.Order{}, total, nil
	}
	end := flt.Offset + flt.Limit
	if end > total {
		end = total
	}
	return matched[flt.Offset:end], total, nil
}

func (f *fakeStore) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, f.err
}

func (f *fakeStore) CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int, error) {
	return f.pending, f.err
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.OrderStatus, error) {
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			prev := f.orders[i].Status
			f.orders[i].Status = status
			return prev, nil
		}
	}
	return "", fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
}

func (f *fakeStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) ListProductsByStock(ctx context.Context, filter models.StockFilter, defaultThreshold, limit int) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Product{}
	for _, p := range f.products {
		threshold := defaultThreshold
		if p.LowStockThreshold != nil {
			threshold = *p.LowStockThreshold
		}
		switch filter {
		case models.StockOutOfStock:
			if p.Stock > 0 {
				continue
			}
		case models.StockLow:
			if p.Stock <= 0 || p.Stock > threshold {
				continue
			}
		case models.StockInStock:
			if p.Stock <= threshold {
				continue
			}
		}
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListAlertCandidates(ctx context.Context, defaultThreshold int, expiringBefore time.Time) ([]models.Product, error) {
	return f.products, f.err
}

func (f *fakeStore) UpdateProductStock(ctx context.Context, productID int64, stock int) error {
	for i := range f.products {
		if f.products[i].ID == productID {
			f.products[i].Stock = stock
			return nil
		}
	}
	return fmt.Errorf("product %d: %w", productID, store.ErrNotFound)
}

type fakeCache struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	sets    int
	lastTTL time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetReport(ctx context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	data, ok := c.data[key]
	if !ok {
		return nil, redisclient.ErrCacheMiss
	}
	return data, nil
}

func (c *fakeCache) SetReport(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	c.lastTTL = ttl
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = data
	return nil
}

type publishedStatus struct {
	orderID  int64
	from, to models.OrderStatus
}

type fakePublisher struct {
	statuses []publishedStatus
	stocks   map[int64]int
	err      error
}

func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, orderID int64, from, to models.OrderStatus) error {
	p.statuses = append(p.statuses, publishedStatus{orderID, from, to})
	return p.err
}

func (p *fakePublisher) PublishStockChanged(ctx context.Context, productID int64, stock int) error {
	if p.stocks == nil {
		p.stocks = make(map[int64]int)
	}
	p.stocks[productID] = stock
	return p.err
}

var errBoom = errors.New("boom")

func items(v ...models.OrderItem) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func intPtr(v int) *int { return &v }
