package worker

import (
	"context"
	"log"

	"dental-shop/internal/broker"
	"dental-shop/internal/models"
	"dental-shop/internal/util"

	"go.uber.org/zap"
)

// ReportInvalidator drops cached reports
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context) (int, error)
}

// EventWorker consumes admin events. Order status changes evict cached
// reports; stock changes that reach an alert level are counted and logged.
type EventWorker struct {
	consumer          *broker.Consumer
	eventHandler      *broker.EventHandler
	cache             ReportInvalidator
	lowStockThreshold int
	logger            *zap.Logger
}

// NewEventWorker creates a new event worker
func NewEventWorker(consumer *broker.Consumer, cache ReportInvalidator, lowStockThreshold int) *EventWorker {
	w := &EventWorker{
		consumer:          consumer,
		eventHandler:      broker.NewEventHandler(),
		cache:             cache,
		lowStockThreshold: lowStockThreshold,
		logger:            util.Named("event-worker"),
	}

	w.eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler.OnStockChanged(w.handleStockChanged)

	return w
}

// Start starts the worker
func (w *EventWorker) Start(ctx context.Context) error {
	log.Println("Starting event worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *EventWorker) Stop() error {
	log.Println("Stopping event worker...")
	return w.consumer.Close()
}

func (w *EventWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	removed, err := w.cache.InvalidateReports(ctx)
	if err != nil {
		w.logger.Error("Failed to invalidate reports",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	util.ReportCacheEvictionsTotal.Inc()
	w.logger.Info("Reports invalidated",
		zap.Int64("order_id", event.OrderID),
		zap.String("to", string(event.ToStatus)),
		zap.Int("keys", removed))
	return nil
}

// handleStockChanged uses the configured threshold; per-product thresholds
// are only applied when alerts are generated.
func (w *EventWorker) handleStockChanged(ctx context.Context, event *models.StockChangedEvent) error {
	var alertType models.AlertType
	switch {
	case event.Stock <= 0:
		alertType = models.AlertTypeOutOfStock
	case event.Stock <= w.lowStockThreshold:
		alertType = models.AlertTypeLowStock
	default:
		return nil
	}

	util.StockAlertLevelsReachedTotal.WithLabelValues(string(alertType)).Inc()
	w.logger.Warn("Product stock reached alert level",
		zap.Int64("product_id", event.ProductID),
		zap.Int("stock", event.Stock),
		zap.String("type", string(alertType)))
	return nil
}
