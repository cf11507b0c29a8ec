// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the TeleMart API.
// Handlers are grouped by resource (auth, categories, products, orders,
// reviews, media) and receive their dependencies through the handler
// struct.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"telemart/internal/auth"
)

// Auth groups the authentication handlers.
type Auth struct {
	auth *auth.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(authService *auth.Service) *Auth {
	return &Auth{auth: authService}
}

// Login verifies Telegram initData and exchanges it for an API token.
// The user record is created on first login, so this is also the
// registration endpoint.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, created, err := h.auth.Login(req.InitData)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInitData) || errors.Is(err, auth.ErrExpiredInitData) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token":       token,
		"user":        user,
		"is_new_user": created,
	})
}
