package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dental-shop/internal/models"
	"dental-shop/internal/util"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) InvalidateReports(ctx context.Context) (int, error) {
	f.calls++
	return 2, f.err
}

func TestEventWorkerInvalidates(t *testing.T) {
	cache := &fakeInvalidator{}
	w := NewEventWorker(nil, cache, 10)

	err := w.handleOrderStatusChanged(context.Background(), &models.OrderStatusChangedEvent{
		OrderID:  9,
		ToStatus: models.OrderStatusCancelled,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, cache.calls)
}

func TestEventWorkerReportsFailure(t *testing.T) {
	cache := &fakeInvalidator{err: errors.New("redis down")}
	w := NewEventWorker(nil, cache, 10)

	err := w.handleOrderStatusChanged(context.Background(), &models.OrderStatusChangedEvent{OrderID: 9})

	assert.Error(t, err)
}

func TestEventWorkerCountsStockAlertLevels(t *testing.T) {
	w := NewEventWorker(nil, &fakeInvalidator{}, 10)
	outOfStock := util.StockAlertLevelsReachedTotal.WithLabelValues(string(models.AlertTypeOutOfStock))
	lowStock := util.StockAlertLevelsReachedTotal.WithLabelValues(string(models.AlertTypeLowStock))
	outBefore := counterValue(t, outOfStock)
	lowBefore := counterValue(t, lowStock)

	cases := []int{0, 10, 11, 3}
	for _, stock := range cases {
		msg := stockChangedMessage(t, 4, stock)
		require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))
	}

	assert.Equal(t, outBefore+1, counterValue(t, outOfStock))
	assert.Equal(t, lowBefore+2, counterValue(t, lowStock))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func stockChangedMessage(t *testing.T, productID int64, stock int) kafka.Message {
	t.Helper()
	body, err := json.Marshal(models.StockChangedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeStockChanged},
		ProductID: productID,
		Stock:     stock,
	})
	require.NoError(t, err)
	return kafka.Message{Value: body}
}

type countingRefresher struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
	err      error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	if c.inFlight.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.inFlight.Add(-1)
	c.calls.Add(1)
	time.Sleep(time.Millisecond)
	return c.err
}

func TestAlertPollerRefreshesUntilCancelled(t *testing.T) {
	r := &countingRefresher{}
	p := NewAlertPoller(r, 2*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	assert.True(t, errors.Is(<-done, context.Canceled))
	assert.False(t, r.overlap.Load())
}

func TestAlertPollerReportsEachRefresh(t *testing.T) {
	r := &countingRefresher{err: errors.New("offline")}
	var mu sync.Mutex
	var results []error

	p := NewAlertPoller(r, time.Hour, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, err)
	})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) == 1
	}, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.EqualError(t, results[0], "offline")
}
