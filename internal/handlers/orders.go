// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"telemart/internal/middleware"
	"telemart/internal/models"
	"telemart/internal/orders"
	"telemart/internal/store"
)

// Orders groups the order handlers. Every route here sits behind
// authentication; the admin routes additionally require the admin flag.
type Orders struct {
	orders *orders.Service
}

// NewOrders creates a new Orders handler group.
func NewOrders(orderService *orders.Service) *Orders {
	return &Orders{orders: orderService}
}

// Create places an order for the authenticated user. Stock is decremented
// atomically, so a concurrent buyer racing for the last unit gets a clean
// insufficient-stock error instead of a negative count.
func (h *Orders) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lines := make([]store.OrderLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = store.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := h.orders.Create(user, lines, req.PaymentScreenshot)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// My returns the authenticated user's orders, newest first.
func (h *Orders) My(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	list, err := h.orders.ListForUser(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": list})
}

// Get returns one order. Owners see their own; admins see any.
func (h *Orders) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.Get(middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// List returns all orders for the admin panel, optionally filtered by
// status.
func (h *Orders) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": list})
}

// UpdateStatus moves an order to a new status. Entering refunded
// returns the order's stock to the shelves.
func (h *Orders) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
