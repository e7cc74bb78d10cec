package broker

import (
	"context"
	"testing"

	"dental-shop/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageRoutesByHeader(t *testing.T) {
	eh := NewEventHandler()

	var got *models.OrderStatusChangedEvent
	eh.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		got = e
		return nil
	})

	msg := kafka.Message{
		Value:   []byte(`{"event_id":"e1","order_id":42,"from_status":"PENDING","to_status":"SHIPPED"}`),
		Headers: []kafka.Header{{Key: eventTypeHeader, Value: []byte(models.EventTypeOrderStatusChanged)}},
	}

	require.NoError(t, eh.HandleMessage(context.Background(), msg))
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.OrderID)
	assert.Equal(t, models.OrderStatusShipped, got.ToStatus)
}

func TestHandleMessageFallsBackToBody(t *testing.T) {
	eh := NewEventHandler()

	var stock int
	eh.OnStockChanged(func(ctx context.Context, e *models.StockChangedEvent) error {
		stock = e.Stock
		return nil
	})

	msg := kafka.Message{Value: []byte(`{"event_type":"STOCK_CHANGED","product_id":7,"stock":3}`)}

	require.NoError(t, eh.HandleMessage(context.Background(), msg))
	assert.Equal(t, 3, stock)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	err := NewEventHandler().HandleMessage(context.Background(), kafka.Message{Value: []byte(`nope`)})

	assert.Error(t, err)
}

func TestHandleMessageIgnoresUnknownType(t *testing.T) {
	msg := kafka.Message{Value: []byte(`{"event_type":"SOMETHING_ELSE"}`)}

	assert.NoError(t, NewEventHandler().HandleMessage(context.Background(), msg))
}
