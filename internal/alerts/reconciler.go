package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dental-shop/internal/models"

	"go.uber.org/zap"
)

// ErrUnknownAlert is returned when a mutation names an alert that is not in
// the latest server list.
var ErrUnknownAlert = errors.New("unknown alert")

// Fetcher loads the current server-side alert list
type Fetcher interface {
	FetchAlerts(ctx context.Context) ([]models.Alert, error)
}

// Reconcile applies persisted read/dismissed flags to a server alert list and
// drops dismissed alerts. Server order is preserved.
func Reconcile(server []models.Alert, state map[string]State) []models.Alert {
	out := make([]models.Alert, 0, len(server))
	for _, a := range server {
		if st, ok := state[a.ID]; ok {
			a.IsRead = st.IsRead
			a.IsDismissed = st.IsDismissed
		}
		if a.IsDismissed {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Reconciler holds the alert list a client displays. Every mutation
// persists the full state map before it takes effect.
type Reconciler struct {
	fetcher Fetcher
	store   StateStore
	logger  *zap.Logger

	mu      sync.Mutex
	state   map[string]State
	server  []models.Alert
	visible []models.Alert
	seq     uint64
	applied uint64
}

// NewReconciler creates a reconciler and loads the persisted state
func NewReconciler(fetcher Fetcher, store StateStore, logger *zap.Logger) (*Reconciler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load alert state: %w", err)
	}
	if state == nil {
		state = make(map[string]State)
	}

	return &Reconciler{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		state:   state,
	}, nil
}

// Refresh fetches the server list and reconciles it. On failure the
// previously displayed alerts are kept. A response that arrives after a
// newer refresh has already been applied is dropped.
func (r *Reconciler) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	server, err := r.fetcher.FetchAlerts(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.logger.Warn("Failed to fetch alerts, keeping previous list",
			zap.Uint64("seq", seq),
			zap.Error(err))
		return fmt.Errorf("failed to fetch alerts: %w", err)
	}

	if seq <= r.applied {
		r.logger.Debug("Dropping stale alert response",
			zap.Uint64("seq", seq),
			zap.Uint64("applied", r.applied))
		return nil
	}

	r.applied = seq
	r.server = server
	r.visible = Reconcile(server, r.state)
	return nil
}

// Alerts returns a copy of the visible alerts
func (r *Reconciler) Alerts() []models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Alert, len(r.visible))
	copy(out, r.visible)
	return out
}

// UnreadCount returns how many visible alerts are unread
func (r *Reconciler) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range r.visible {
		if !a.IsRead {
			n++
		}
	}
	return n
}

// MarkRead flags an alert as read, keeping its dismissed flag
func (r *Reconciler) MarkRead(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.known(id) {
		return fmt.Errorf("%w: %s", ErrUnknownAlert, id)
	}

	next := copyState(r.state)
	st := next[id]
	st.IsRead = true
	next[id] = st

	visible := copyAlerts(r.visible)
	for i := range visible {
		if visible[i].ID == id {
			visible[i].IsRead = true
		}
	}
	return r.commit(next, visible)
}

// Dismiss flags an alert as read and dismissed and hides it immediately
func (r *Reconciler) Dismiss(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.known(id) {
		return fmt.Errorf("%w: %s", ErrUnknownAlert, id)
	}

	next := copyState(r.state)
	next[id] = State{IsRead: true, IsDismissed: true}

	visible := make([]models.Alert, 0, len(r.visible))
	for _, a := range r.visible {
		if a.ID != id {
			visible = append(visible, a)
		}
	}
	return r.commit(next, visible)
}

// MarkAllRead flags every visible alert as read
func (r *Reconciler) MarkAllRead() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := copyState(r.state)
	visible := copyAlerts(r.visible)
	for i := range visible {
		id := visible[i].ID
		st := next[id]
		st.IsRead = true
		next[id] = st
		visible[i].IsRead = true
	}
	return r.commit(next, visible)
}

// RestoreDismissed un-dismisses every stored alert and refetches
func (r *Reconciler) RestoreDismissed(ctx context.Context) error {
	r.mu.Lock()
	next := copyState(r.state)
	for id, st := range next {
		if st.IsDismissed {
			st.IsDismissed = false
			next[id] = st
		}
	}
	err := r.commit(next, Reconcile(r.server, next))
	r.mu.Unlock()

	if err != nil {
		return err
	}
	return r.Refresh(ctx)
}

// ClearDismissed removes dismissed entries from storage. Visibility is not
// recomputed; cleared alerts stay hidden until the next refresh.
func (r *Reconciler) ClearDismissed() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := copyState(r.state)
	for id, st := range next {
		if st.IsDismissed {
			delete(next, id)
		}
	}
	return r.commit(next, r.visible)
}

// State returns a copy of the persisted overlay
func (r *Reconciler) State() map[string]State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyState(r.state)
}

func (r *Reconciler) known(id string) bool {
	for _, a := range r.server {
		if a.ID == id {
			return true
		}
	}
	return false
}

// commit saves state and only then makes it current. A failed save leaves
// the reconciler unchanged. Must be called with mu held.
func (r *Reconciler) commit(state map[string]State, visible []models.Alert) error {
	if err := r.store.Save(copyState(state)); err != nil {
		return fmt.Errorf("failed to persist alert state: %w", err)
	}
	r.state = state
	r.visible = visible
	return nil
}

func copyAlerts(src []models.Alert) []models.Alert {
	dst := make([]models.Alert, len(src))
	copy(dst, src)
	return dst
}
