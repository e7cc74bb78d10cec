package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, orderID int64, from, to models.OrderStatus) error {
	event := &models.OrderStatusChangedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
	}
	key := fmt.Sprintf("order-%d", orderID)
	return ep.producer.PublishEvent(ctx, key, event.EventType, event)
}

// PublishStockChanged publishes StockChanged event
func (ep *EventPublisher) PublishStockChanged(ctx context.Context, productID int64, stock int) error {
	event := &models.StockChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeStockChanged),
		ProductID: productID,
		Stock:     stock,
	}
	key := fmt.Sprintf("product-%d", productID)
	return ep.producer.PublishEvent(ctx, key, event.EventType, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderStatusChanged func(context.Context, *models.OrderStatusChangedEvent) error
	onStockChanged       func(context.Context, *models.StockChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// OnStockChanged registers a handler for StockChanged events
func (eh *EventHandler) OnStockChanged(handler func(context.Context, *models.StockChangedEvent) error) {
	eh.onStockChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	eventType := headerValue(msg, eventTypeHeader)
	if eventType == "" {
		var baseEvent models.BaseEvent
		if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
			return fmt.Errorf("failed to unmarshal base event: %w", err)
		}
		eventType = baseEvent.EventType
	}

	switch eventType {
	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	case models.EventTypeStockChanged:
		if eh.onStockChanged != nil {
			var event models.StockChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockChanged event: %w", err)
			}
			return eh.onStockChanged(ctx, &event)
		}

	default:
		util.GetLogger().Debug("Ignoring event", zap.String("type", eventType))
	}

	return nil
}
