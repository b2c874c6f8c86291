package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Next returns the status that follows s in the forward progression,
// or "" when s is terminal or unknown.
func (s OrderStatus) Next() OrderStatus {
	switch s {
	case OrderStatusPending:
		return OrderStatusConfirmed
	case OrderStatusConfirmed:
		return OrderStatusShipped
	case OrderStatusShipped:
		return OrderStatusDelivered
	default:
		return ""
	}
}

// CanTransitionTo reports whether moving from s to next is allowed:
// one step forward along the fixed sequence, or to cancelled from any
// non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	return s.Next() == next
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentMethodCOD is the only payment method the storefront takes.
const PaymentMethodCOD = "cod"

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type OrderItem struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

type Order struct {
	ID            uuid.UUID
	OrderNumber   string
	UserID        int64
	TotalAmount   float64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod string
	Address       ShippingAddress
	Notes         string
	Items         []OrderItem
	CreatedAt     time.Time
}
