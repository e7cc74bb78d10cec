package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidStockFilter = errors.New("invalid stock filter")
	ErrInvalidTimeRange   = errors.New("invalid time range")
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in display order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// StatusBucket groups statuses that reports count together
type StatusBucket int

const (
	BucketPending StatusBucket = iota
	BucketProcessing
	BucketShipped
	BucketCompleted
	BucketCancelled
	BucketUnknown
)

// ParseOrderStatus normalises and validates a status string
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s OrderStatus) Valid() bool {
	return s.Bucket() != BucketUnknown
}

// Bucket maps a status to its report bucket
func (s OrderStatus) Bucket() StatusBucket {
	switch s {
	case OrderStatusPending:
		return BucketPending
	case OrderStatusConfirmed, OrderStatusProcessing:
		return BucketProcessing
	case OrderStatusShipped:
		return BucketShipped
	case OrderStatusDelivered, OrderStatusCompleted:
		return BucketCompleted
	case OrderStatusCancelled:
		return BucketCancelled
	}
	return BucketUnknown
}

// Label returns the admin-facing label
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusConfirmed:
		return "Confirmed"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCompleted:
		return "Completed"
	case OrderStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Color returns the badge color used by the dashboards
func (s OrderStatus) Color() string {
	switch s {
	case OrderStatusPending:
		return "yellow"
	case OrderStatusConfirmed, OrderStatusProcessing:
		return "blue"
	case OrderStatusShipped:
		return "purple"
	case OrderStatusDelivered, OrderStatusCompleted:
		return "green"
	case OrderStatusCancelled:
		return "red"
	}
	return "gray"
}
