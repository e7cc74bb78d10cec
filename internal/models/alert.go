package models

import (
	"fmt"
	"strings"
	"time"
)

// AlertType identifies what condition raised an alert
type AlertType string

const (
	AlertTypeLowStock     AlertType = "LOW_STOCK"
	AlertTypeOutOfStock   AlertType = "OUT_OF_STOCK"
	AlertTypeExpiringSoon AlertType = "EXPIRING_SOON"
	AlertTypeSystem       AlertType = "SYSTEM"
)

var AlertTypes = []AlertType{
	AlertTypeLowStock,
	AlertTypeOutOfStock,
	AlertTypeExpiringSoon,
	AlertTypeSystem,
}

func (t AlertType) Label() string {
	switch t {
	case AlertTypeLowStock:
		return "Low stock"
	case AlertTypeOutOfStock:
		return "Out of stock"
	case AlertTypeExpiringSoon:
		return "Expiring soon"
	case AlertTypeSystem:
		return "System"
	}
	return "Unknown"
}

// Severity is the urgency of an alert
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var Severities = []Severity{
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
	SeverityCritical,
}

// Rank orders severities; higher is more urgent
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

func (s Severity) Color() string {
	switch s {
	case SeverityLow:
		return "blue"
	case SeverityMedium:
		return "yellow"
	case SeverityHigh:
		return "orange"
	case SeverityCritical:
		return "red"
	}
	return "gray"
}

// Alert is derived from live stock levels on every request and is never
// persisted server side. IsRead and IsDismissed are client overlay flags.
type Alert struct {
	ID          string    `json:"id"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ProductID   int64     `json:"productId,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	IsRead      bool      `json:"isRead"`
	IsDismissed bool      `json:"isDismissed"`
}

// AlertID builds the id of a product alert. The id only depends on type and
// product, so a recreated alert reuses the id of an earlier one.
func AlertID(t AlertType, productID int64) string {
	return fmt.Sprintf("%s-%d", strings.ToLower(string(t)), productID)
}
