// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package orders drives order placement and the status lifecycle,
// including the refund restock.
package orders

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"telemart/internal/models"
	"telemart/internal/store"
)

var (
	// ErrEmptyOrder is returned when an order arrives with no items.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrInvalidQuantity is returned when an item asks for zero or
	// negative units.
	ErrInvalidQuantity = errors.New("item quantity must be positive")

	// ErrInvalidStatus is returned when a status value is not one of
	// the five the lifecycle knows.
	ErrInvalidStatus = errors.New("unknown order status")

	// ErrOrderNotFound is returned when an order id resolves to nothing.
	ErrOrderNotFound = errors.New("order not found")

	// ErrForbidden is returned when a user asks for an order that is
	// not theirs and they are not an admin.
	ErrForbidden = errors.New("order belongs to another user")
)

// Service applies the order lifecycle rules on top of the stores.
type Service struct {
	orders *store.OrderStore
	users  *store.UserStore
}

// NewService returns an orders Service.
func NewService(orders *store.OrderStore, users *store.UserStore) *Service {
	return &Service{orders: orders, users: users}
}

// Create places an order for the user. Stock validation and the
// decrement run atomically in the store; a failure on any line leaves
// every product untouched. The shop owner is notified by log line only,
// delivery of real notifications is out of scope.
func (s *Service) Create(user *models.User, lines []store.OrderLine, paymentScreenshot string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, line.ProductID)
		}
	}

	order, err := s.orders.Create(user.ID, lines, paymentScreenshot)
	if err != nil {
		return nil, err
	}

	slog.Info("order placed",
		"order_id", order.ID,
		"telegram_id", user.TelegramID,
		"items", len(order.Items),
		"total", order.TotalAmount.String())
	return order, nil
}

// UpdateStatus moves an order to a new lifecycle status. Only the five
// enumerated values are accepted; any of them is reachable from any
// other, which keeps admin corrections possible (completed orders can
// still be refunded). Entering refunded restocks the items exactly once.
func (s *Service) UpdateStatus(orderID uuid.UUID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(models.OrderStatus(status)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.orders.UpdateStatus(orderID, models.OrderStatus(status))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	slog.Info("order status changed", "order_id", order.ID, "status", order.Status)
	return order, nil
}

// Get returns an order to its owner or to an admin.
func (s *Service) Get(requester *models.User, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != requester.ID && !requester.IsAdmin {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListForUser returns the user's own orders, newest first.
func (s *Service) ListForUser(userID uuid.UUID) ([]models.Order, error) {
	return s.orders.ListByUser(userID)
}

// List returns all orders for the admin view, optionally filtered by
// status, with the owning users attached.
func (s *Service) List(statusFilter string) ([]models.Order, error) {
	if statusFilter != "" && !models.ValidOrderStatus(models.OrderStatus(statusFilter)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, statusFilter)
	}

	orders, err := s.orders.List(statusFilter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]bool, len(orders))
	for _, o := range orders {
		if !seen[o.UserID] {
			seen[o.UserID] = true
			ids = append(ids, o.UserID)
		}
	}

	users, err := s.users.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if u, ok := users[orders[i].UserID]; ok {
			orders[i].User = &u
		}
	}
	return orders, nil
}
