package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dental-shop/internal/alerts"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const alertStateTimeout = 3 * time.Second

// AlertStateStore keeps one client's alert overlay as a single JSON value,
// so the same state is shared by every process using that client id.
// Concurrent writers overwrite each other; the last Save wins.
type AlertStateStore struct {
	rdb    *redis.Client
	key    string
	logger *zap.Logger
}

// AlertStateStore returns a store for the given client id
func (c *Client) AlertStateStore(clientID string, logger *zap.Logger) *AlertStateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := fmt.Sprintf("alert-state:%s", clientID)
	return &AlertStateStore{
		rdb:    c.rdb,
		key:    key,
		logger: logger.With(zap.String("key", key)),
	}
}

// Load implements alerts.StateStore
func (s *AlertStateStore) Load() (map[string]alerts.State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), alertStateTimeout)
	defer cancel()

	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return make(map[string]alerts.State), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load alert state: %w", err)
	}
	return alerts.DecodeState(data, s.logger), nil
}

// Save implements alerts.StateStore
func (s *AlertStateStore) Save(state map[string]alerts.State) error {
	ctx, cancel := context.WithTimeout(context.Background(), alertStateTimeout)
	defer cancel()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode alert state: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save alert state: %w", err)
	}
	return nil
}
