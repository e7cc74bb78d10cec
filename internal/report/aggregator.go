package report

import (
	"sort"
	"strconv"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/util"

	"go.uber.org/zap"
)

const (
	TopCategories = 5
	TopProducts   = 3

	uncategorized = "Uncategorized"
)

// Summary holds the headline numbers of a set of orders
type Summary struct {
	TotalOrders       int     `json:"totalOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	PendingOrders     int     `json:"pendingOrders"`
	ProcessingOrders  int     `json:"processingOrders"`
	ShippedOrders     int     `json:"shippedOrders"`
	CompletedOrders   int     `json:"completedOrders"`
	CancelledOrders   int     `json:"cancelledOrders"`
}

// CategoryShare is one row of the category breakdown
type CategoryShare struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// ProductShare is one row of a product ranking
type ProductShare struct {
	ProductID int64   `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// StatusShare is one row of the status distribution
type StatusShare struct {
	Status     models.OrderStatus `json:"status"`
	Label      string             `json:"label"`
	Color      string             `json:"color"`
	Count      int                `json:"count"`
	Percentage float64            `json:"percentage"`
}

// PaymentShare is one row of the payment method distribution
type PaymentShare struct {
	Method     string  `json:"method"`
	Count      int     `json:"count"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Report is the full aggregation of a set of orders
type Report struct {
	Summary    Summary         `json:"summary"`
	Trends     []Bucket        `json:"trends"`
	Categories []CategoryShare `json:"categories"`
}

// Aggregator turns orders into report figures. It keeps no state between
// calls; the logger only records skipped item payloads.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// Aggregate summarizes orders that the caller has already restricted to the
// requested window.
func (a *Aggregator) Aggregate(orders []models.Order, g Granularity, bucketCount int, now time.Time) *Report {
	return &Report{
		Summary:    Summarize(orders),
		Trends:     Buckets(orders, g, bucketCount, now),
		Categories: a.CategoryBreakdown(orders, TopCategories),
	}
}

// Summarize counts orders, sums revenue and tallies status buckets
func Summarize(orders []models.Order) Summary {
	var s Summary
	var revenue Money

	for _, o := range orders {
		s.TotalOrders++
		revenue.Add(o.Total)

		switch o.Status.Bucket() {
		case models.BucketPending:
			s.PendingOrders++
		case models.BucketProcessing:
			s.ProcessingOrders++
		case models.BucketShipped:
			s.ShippedOrders++
		case models.BucketCompleted:
			s.CompletedOrders++
		case models.BucketCancelled:
			s.CancelledOrders++
		}
	}

	s.TotalRevenue = revenue.Float()
	s.AverageOrderValue = revenue.Average(s.TotalOrders)
	return s
}

// items decodes an order's payload, logging and skipping it when malformed
func (a *Aggregator) items(o models.Order) ([]models.OrderItem, bool) {
	items, err := ParseItems(o.Items)
	if err != nil {
		util.OrderItemParseFailuresTotal.Inc()
		a.logger.Warn("Skipping malformed order items",
			zap.Int64("order_id", o.ID),
			zap.Error(err))
		return nil, false
	}
	return items, true
}

// CategoryBreakdown ranks categories by units sold and keeps the top limit.
// Orders whose items cannot be decoded are left out.
func (a *Aggregator) CategoryBreakdown(orders []models.Order, limit int) []CategoryShare {
	type acc struct {
		count   int
		revenue Money
	}
	byCategory := make(map[string]*acc)
	total := 0

	for _, o := range orders {
		items, ok := a.items(o)
		if !ok {
			continue
		}
		for _, it := range items {
			cat := it.Category
			if cat == "" {
				cat = uncategorized
			}
			c, found := byCategory[cat]
			if !found {
				c = &acc{}
				byCategory[cat] = c
			}
			c.count += it.Quantity
			c.revenue.AddLine(it.Price, it.Quantity)
			total += it.Quantity
		}
	}

	out := make([]CategoryShare, 0, len(byCategory))
	for cat, c := range byCategory {
		out = append(out, CategoryShare{
			Category:   cat,
			Count:      c.count,
			Revenue:    c.revenue.Float(),
			Percentage: Percentage(float64(c.count), float64(total)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return truncate(out, limit)
}

// FavoriteProducts ranks products by units ordered and keeps the top limit
func (a *Aggregator) FavoriteProducts(orders []models.Order, limit int) []ProductShare {
	type acc struct {
		share   ProductShare
		revenue Money
	}
	byKey := make(map[string]*acc)

	for _, o := range orders {
		items, ok := a.items(o)
		if !ok {
			continue
		}
		for _, it := range items {
			key := it.Name
			if it.ProductID != 0 {
				key = "#" + strconv.FormatInt(it.ProductID, 10)
			}
			p, found := byKey[key]
			if !found {
				p = &acc{share: ProductShare{ProductID: it.ProductID, Name: it.Name}}
				byKey[key] = p
			}
			p.share.Quantity += it.Quantity
			p.revenue.AddLine(it.Price, it.Quantity)
		}
	}

	out := make([]ProductShare, 0, len(byKey))
	for _, p := range byKey {
		p.share.Revenue = p.revenue.Float()
		out = append(out, p.share)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	return truncate(out, limit)
}

// StatusDistribution counts orders per status, in the fixed status order,
// omitting statuses with no orders.
func StatusDistribution(orders []models.Order) []StatusShare {
	counts := make(map[models.OrderStatus]int)
	for _, o := range orders {
		counts[o.Status]++
	}

	out := make([]StatusShare, 0, len(counts))
	for _, st := range models.OrderStatuses {
		n := counts[st]
		if n == 0 {
			continue
		}
		out = append(out, StatusShare{
			Status:     st,
			Label:      st.Label(),
			Color:      st.Color(),
			Count:      n,
			Percentage: Percentage(float64(n), float64(len(orders))),
		})
	}
	return out
}

// PaymentDistribution counts orders and sums totals per payment method
func PaymentDistribution(orders []models.Order) []PaymentShare {
	type acc struct {
		count  int
		amount Money
	}
	byMethod := make(map[string]*acc)
	for _, o := range orders {
		method := o.PaymentMethod
		if method == "" {
			method = "unknown"
		}
		m, found := byMethod[method]
		if !found {
			m = &acc{}
			byMethod[method] = m
		}
		m.count++
		m.amount.Add(o.Total)
	}

	out := make([]PaymentShare, 0, len(byMethod))
	for method, m := range byMethod {
		out = append(out, PaymentShare{
			Method:     method,
			Count:      m.count,
			Amount:     m.amount.Float(),
			Percentage: Percentage(float64(m.count), float64(len(orders))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
