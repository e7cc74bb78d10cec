package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dental-shop/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const productColumns = `id, sku, name, category, price, stock, low_stock_threshold, expires_at, created_at, updated_at`

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProductsByStock lists catalog products matching a stock filter.
// A product is low on stock when it has some left but no more than its own
// threshold, or defaultThreshold when it has none.
func (s *Store) ListProductsByStock(ctx context.Context, filter models.StockFilter, defaultThreshold, limit int) ([]models.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	args := []interface{}{}

	switch filter {
	case models.StockOutOfStock:
		query += " WHERE stock <= 0 ORDER BY name"
	case models.StockLow:
		query += " WHERE stock > 0 AND stock <= COALESCE(low_stock_threshold, $1) ORDER BY stock, name"
		args = append(args, defaultThreshold)
	case models.StockInStock:
		query += " WHERE stock > COALESCE(low_stock_threshold, $1) ORDER BY name"
		args = append(args, defaultThreshold)
	default:
		query += " ORDER BY name"
	}

	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// ListAlertCandidates returns products that are low, out of stock, or
// expiring before the given time.
func (s *Store) ListAlertCandidates(ctx context.Context, defaultThreshold int, expiringBefore time.Time) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE stock <= COALESCE(low_stock_threshold, $1)
		   OR (expires_at IS NOT NULL AND expires_at <= $2)
		ORDER BY id`

	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, query, defaultThreshold, expiringBefore)
	return products, err
}

// UpdateProductStock sets the stock level of a product
func (s *Store) UpdateProductStock(ctx context.Context, productID int64, stock int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2",
		stock, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return nil
}
