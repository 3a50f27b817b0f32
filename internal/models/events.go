package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeReviewAdded        = "REVIEW_ADDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published after an order and its items are stored
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	OrderStatus   string          `json:"order_status"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when an admin moves an order
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
	PaymentStatus string `json:"payment_status"`
}

// ReviewAddedEvent published when a review is stored
type ReviewAddedEvent struct {
	BaseEvent
	ReviewID    string `json:"review_id"`
	ProductID   string `json:"product_id"`
	UserID      string `json:"user_id"`
	ReviewValue int    `json:"review_value"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
