package service

import (
	"context"
	"errors"
	"fmt"

	"dental-shop/internal/models"
	"dental-shop/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrInvalidStock is returned for a negative stock level
var ErrInvalidStock = errors.New("stock must not be negative")

// OrderService handles admin changes to orders and stock
type OrderService struct {
	orders         OrderStore
	products       ProductStore
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, products ProductStore, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		orders:         orders,
		products:       products,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// UpdateStatusRequest represents a request to change an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatusResponse represents the response after a status change
type UpdateStatusResponse struct {
	OrderID        int64              `json:"orderId"`
	PreviousStatus models.OrderStatus `json:"previousStatus"`
	Status         models.OrderStatus `json:"status"`
}

// UpdateOrderStatus validates and stores a new status and announces the
// change. A failed publish is logged; the stored status stands.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, req *UpdateStatusRequest) (*UpdateStatusResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus", attribute.Int64("order_id", orderID))
	defer span.End()

	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	previous, err := s.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))

	if previous != status && s.eventPublisher != nil {
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, orderID, previous, status); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}

	return &UpdateStatusResponse{
		OrderID:        orderID,
		PreviousStatus: previous,
		Status:         status,
	}, nil
}

// AdjustStockRequest represents a request to set a product's stock level
type AdjustStockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// AdjustStock sets the stock of a product and returns the updated product
func (s *OrderService) AdjustStock(ctx context.Context, productID int64, req *AdjustStockRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AdjustStock", attribute.Int64("product_id", productID))
	defer span.End()

	if req.Stock == nil || *req.Stock < 0 {
		return nil, ErrInvalidStock
	}

	if err := s.products.UpdateProductStock(ctx, productID, *req.Stock); err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	util.StockAdjustmentsTotal.Inc()

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishStockChanged(ctx, productID, *req.Stock); err != nil {
			s.logger.Error("Failed to publish StockChanged event",
				zap.Int64("product_id", productID),
				zap.Error(err))
		}
	}

	return s.products.GetProductByID(ctx, productID)
}
