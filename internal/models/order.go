// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderPending is an order placed but not yet paid.
	OrderPending OrderStatus = "pending"

	// OrderPaidPending is the initial state: the customer attached a
	// payment screenshot and awaits manual confirmation.
	OrderPaidPending OrderStatus = "paid-pending"

	// OrderProcessing is a confirmed order being prepared.
	OrderProcessing OrderStatus = "processing"

	// OrderCompleted is a delivered order; completion unlocks reviews.
	OrderCompleted OrderStatus = "completed"

	// OrderRefunded is a cancelled order whose items went back to stock.
	OrderRefunded OrderStatus = "refunded"
)

// ValidOrderStatus reports whether s is one of the five known states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderPaidPending, OrderProcessing, OrderCompleted, OrderRefunded:
		return true
	}
	return false
}

// Order records a purchase. TotalAmount is fixed at creation from the
// item snapshots and is never recomputed afterwards.
type Order struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	Status            OrderStatus     `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaymentScreenshot string          `json:"payment_screenshot,omitempty"`
	ReviewSubmitted   bool            `json:"review_submitted"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Virtual fields populated by store methods.
	Items []OrderItem `json:"items,omitempty"`
	User  *User       `json:"user,omitempty"` // admin listings only
}

// OrderItem is a frozen snapshot of a product at purchase time. It keeps
// no foreign key to products, so later catalog edits and deletions never
// rewrite order history.
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// Subtotal returns price times quantity for this line.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
