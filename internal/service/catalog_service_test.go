package service

import (
	"context"
	"testing"

	"dental-shop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogStore() *fakeStore {
	st := &fakeStore{}
	for i := 1; i <= 30; i++ {
		st.products = append(st.products, models.Product{ID: int64(i), Name: "Product", Stock: i - 1})
	}
	return st
}

func TestListByStockFilters(t *testing.T) {
	s := NewCatalogService(catalogStore(), 10, 100)
	ctx := context.Background()

	out, err := s.ListByStock(ctx, models.StockOutOfStock, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	low, err := s.ListByStock(ctx, models.StockLow, 0)
	require.NoError(t, err)
	assert.Len(t, low, 10)
	for _, p := range low {
		assert.True(t, p.Stock > 0 && p.Stock <= 10)
	}
}

func TestListByStockLimits(t *testing.T) {
	s := NewCatalogService(catalogStore(), 10, 25)
	ctx := context.Background()

	all, err := s.ListByStock(ctx, models.StockAll, 0)
	require.NoError(t, err)
	assert.Len(t, all, DefaultCatalogLimit)

	all, err = s.ListByStock(ctx, models.StockAll, 500)
	require.NoError(t, err)
	assert.Len(t, all, 25)
}
