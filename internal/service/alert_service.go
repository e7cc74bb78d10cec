package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/util"

	"go.uber.org/zap"
)

const expiryUrgentWindow = 7 * 24 * time.Hour

// AlertConfig holds the thresholds alerts are derived from
type AlertConfig struct {
	LowStockThreshold     int
	ExpiryWarningDays     int
	PendingOrderThreshold int
}

// AlertService derives stock alerts from the current catalog
type AlertService struct {
	products ProductStore
	orders   OrderStore
	cfg      AlertConfig
	now      Clock
	logger   *zap.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(products ProductStore, orders OrderStore, cfg AlertConfig) *AlertService {
	return &AlertService{
		products: products,
		orders:   orders,
		cfg:      cfg,
		now:      time.Now,
		logger:   util.Named("alerts"),
	}
}

// GenerateAlerts builds the current alert list, most severe first and newest
// first within a severity. Alerts are recomputed on every call.
func (s *AlertService) GenerateAlerts(ctx context.Context) ([]models.Alert, error) {
	ctx, span := util.StartSpan(ctx, "AlertService.GenerateAlerts")
	defer span.End()

	now := s.now()
	expiringBefore := now.AddDate(0, 0, s.cfg.ExpiryWarningDays)

	products, err := s.products.ListAlertCandidates(ctx, s.cfg.LowStockThreshold, expiringBefore)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load alert candidates: %w", err)
	}

	alerts := make([]models.Alert, 0, len(products))
	for _, p := range products {
		if a, ok := s.stockAlert(p); ok {
			alerts = append(alerts, a)
		}
		if a, ok := s.expiryAlert(p, now, expiringBefore); ok {
			alerts = append(alerts, a)
		}
	}

	if s.orders != nil && s.cfg.PendingOrderThreshold > 0 {
		pending, err := s.orders.CountOrdersByStatus(ctx, models.OrderStatusPending)
		if err != nil {
			s.logger.Warn("Failed to count pending orders", zap.Error(err))
		} else if pending > s.cfg.PendingOrderThreshold {
			alerts = append(alerts, models.Alert{
				ID:        models.AlertID(models.AlertTypeSystem, 0),
				Type:      models.AlertTypeSystem,
				Severity:  models.SeverityMedium,
				Title:     "Order backlog",
				Message:   fmt.Sprintf("%d orders are waiting to be processed", pending),
				CreatedAt: now,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})

	for _, a := range alerts {
		util.AlertsGeneratedTotal.WithLabelValues(string(a.Type)).Inc()
	}
	return alerts, nil
}

func (s *AlertService) threshold(p models.Product) int {
	if p.LowStockThreshold != nil {
		return *p.LowStockThreshold
	}
	return s.cfg.LowStockThreshold
}

func (s *AlertService) stockAlert(p models.Product) (models.Alert, bool) {
	threshold := s.threshold(p)

	switch {
	case p.Stock <= 0:
		return models.Alert{
			ID:          models.AlertID(models.AlertTypeOutOfStock, p.ID),
			Type:        models.AlertTypeOutOfStock,
			Severity:    models.SeverityCritical,
			Title:       "Out of stock",
			Message:     fmt.Sprintf("%s is out of stock", p.Name),
			ProductID:   p.ID,
			ProductName: p.Name,
			CreatedAt:   p.UpdatedAt,
		}, true

	case p.Stock <= threshold:
		severity := models.SeverityMedium
		if p.Stock*2 <= threshold {
			severity = models.SeverityHigh
		}
		return models.Alert{
			ID:          models.AlertID(models.AlertTypeLowStock, p.ID),
			Type:        models.AlertTypeLowStock,
			Severity:    severity,
			Title:       "Low stock",
			Message:     fmt.Sprintf("%s has %d left (threshold %d)", p.Name, p.Stock, threshold),
			ProductID:   p.ID,
			ProductName: p.Name,
			CreatedAt:   p.UpdatedAt,
		}, true
	}

	return models.Alert{}, false
}

func (s *AlertService) expiryAlert(p models.Product, now, expiringBefore time.Time) (models.Alert, bool) {
	if p.ExpiresAt == nil || p.ExpiresAt.After(expiringBefore) {
		return models.Alert{}, false
	}

	left := p.ExpiresAt.Sub(now)
	severity := models.SeverityLow
	message := fmt.Sprintf("%s expires on %s", p.Name, p.ExpiresAt.Format("Jan 2, 2006"))
	switch {
	case left <= 0:
		severity = models.SeverityCritical
		message = fmt.Sprintf("%s expired on %s", p.Name, p.ExpiresAt.Format("Jan 2, 2006"))
	case left <= expiryUrgentWindow:
		severity = models.SeverityHigh
	}

	return models.Alert{
		ID:          models.AlertID(models.AlertTypeExpiringSoon, p.ID),
		Type:        models.AlertTypeExpiringSoon,
		Severity:    severity,
		Title:       "Expiring soon",
		Message:     message,
		ProductID:   p.ID,
		ProductName: p.Name,
		CreatedAt:   p.UpdatedAt,
	}, true
}
