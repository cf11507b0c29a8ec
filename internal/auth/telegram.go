// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth verifies Telegram Mini App logins and issues the signed
// bearer tokens the rest of the API trusts.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxInitDataAge is how old an initData payload may be before it is
// treated as a replay. Telegram signs auth_date into the payload.
const MaxInitDataAge = 24 * time.Hour

var (
	// ErrInvalidInitData is returned when the payload is malformed or
	// its signature does not match the bot token.
	ErrInvalidInitData = errors.New("init data failed verification")

	// ErrExpiredInitData is returned when auth_date is older than
	// MaxInitDataAge.
	ErrExpiredInitData = errors.New("init data is too old")
)

// TelegramUser is the user object Telegram embeds in initData.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	PhotoURL     string `json:"photo_url"`
}

// VerifyInitData checks a Mini App initData query string against the
// bot token and returns the embedded user. The signature scheme is
// Telegram's: the secret key is HMAC-SHA256 of the bot token keyed with
// "WebAppData", and the hash field must equal the hex HMAC-SHA256 of
// the remaining fields sorted and joined as "key=value" lines.
func VerifyInitData(initData, botToken string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	providedHash := values.Get("hash")
	if providedHash == "" {
		return nil, ErrInvalidInitData
	}

	pairs := make([]string, 0, len(values))
	for key, vs := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+vs[0])
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))

	provided, err := hex.DecodeString(providedHash)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	if !hmac.Equal(mac.Sum(nil), provided) {
		return nil, ErrInvalidInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	if time.Since(time.Unix(authDate, 0)) > MaxInitDataAge {
		return nil, ErrExpiredInitData
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrInvalidInitData
	}
	var user TelegramUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("parse init data user: %w", err)
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}
	return &user, nil
}
