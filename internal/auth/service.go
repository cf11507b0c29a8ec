// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"telemart/internal/models"
	"telemart/internal/store"
)

// ErrUnknownUser is returned when a valid token references a user row
// that no longer exists.
var ErrUnknownUser = errors.New("token subject no longer exists")

// Service ties initData verification, the user store and token
// issuance together.
type Service struct {
	users           *store.UserStore
	tokens          *TokenManager
	botToken        string
	adminTelegramID int64
}

// NewService returns an auth Service. adminTelegramID names the single
// Telegram account that logs in with admin rights; zero disables admin
// promotion entirely.
func NewService(users *store.UserStore, tokens *TokenManager, botToken string, adminTelegramID int64) *Service {
	return &Service{
		users:           users,
		tokens:          tokens,
		botToken:        botToken,
		adminTelegramID: adminTelegramID,
	}
}

// Login verifies a Mini App initData payload, creates the user on first
// contact or syncs their profile on a returning one, and returns the
// user with a signed bearer token. The bool reports whether the user
// was created by this login.
func (s *Service) Login(initData string) (*models.User, string, bool, error) {
	tgUser, err := VerifyInitData(initData, s.botToken)
	if err != nil {
		return nil, "", false, err
	}

	isAdmin := s.adminTelegramID != 0 && tgUser.ID == s.adminTelegramID
	user, created, err := s.users.Upsert(
		tgUser.ID, tgUser.FirstName, tgUser.LastName,
		tgUser.Username, tgUser.PhotoURL, isAdmin,
	)
	if err != nil {
		return nil, "", false, fmt.Errorf("login upsert: %w", err)
	}
	if created {
		slog.Info("new telegram user registered",
			"telegram_id", user.TelegramID, "username", user.Username)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", false, err
	}
	return user, token, created, nil
}

// Authenticate resolves a bearer token to a live user row, so admin
// revocation and profile changes take effect before the token expires.
func (s *Service) Authenticate(token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return user, nil
}
