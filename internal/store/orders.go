package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dental-shop/internal/models"
)

const orderColumns = `id, order_number, customer_id, customer_email, status, total, payment_method, items, created_at, updated_at`

// OrderFilter selects a page of orders
type OrderFilter struct {
	From   time.Time
	Status models.OrderStatus
	Limit  int
	Offset int
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersBetween retrieves orders created in [from, to), newest first
func (s *Store) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC",
		from, to)
	return orders, err
}

// ListOrdersPage retrieves one page of orders plus the total number matching
func (s *Store) ListOrdersPage(ctx context.Context, f OrderFilter) ([]models.Order, int, error) {
	where := " WHERE created_at >= $1"
	args := []interface{}{f.From}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM orders"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := "SELECT " + orderColumns + " FROM orders" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	orders := []models.Order{}
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// ListOrdersByCustomer retrieves all orders of a customer, newest first
func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return orders, err
}

// CountOrdersByStatus counts orders currently in a status
func (s *Store) CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM orders WHERE status = $1", status)
	return n, err
}

// UpdateOrderStatus moves an order to a new status and returns the one it
// had before. The row is locked for the duration of the change.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.OrderStatus, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var previous models.OrderStatus
	err = tx.GetContext(ctx, &previous,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to update order status: %w", err)
	}

	return previous, tx.Commit()
}
