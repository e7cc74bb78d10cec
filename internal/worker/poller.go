package worker

import (
	"context"
	"time"

	"dental-shop/internal/util"

	"go.uber.org/zap"
)

// Refresher reloads alerts from their source
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AlertPoller refreshes alerts on a fixed interval. Refreshes run one at a
// time on the poller's goroutine.
type AlertPoller struct {
	refresher Refresher
	interval  time.Duration
	onRefresh func(error)
	logger    *zap.Logger
}

// NewAlertPoller creates a new alert poller. onRefresh, if set, is called
// after every refresh with its result.
func NewAlertPoller(refresher Refresher, interval time.Duration, onRefresh func(error)) *AlertPoller {
	return &AlertPoller{
		refresher: refresher,
		interval:  interval,
		onRefresh: onRefresh,
		logger:    util.Named("alert-poller"),
	}
}

// Start refreshes immediately and then on every tick until ctx is done
func (p *AlertPoller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *AlertPoller) refresh(ctx context.Context) {
	err := p.refresher.Refresh(ctx)
	if err != nil && ctx.Err() == nil {
		p.logger.Warn("Alert refresh failed", zap.Error(err))
	}
	if p.onRefresh != nil {
		p.onRefresh(err)
	}
}
