package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"telemart/internal/models"
)

// TokenTTL is how long an issued bearer token stays valid. Mini App
// sessions re-login transparently, so a week keeps returning users out
// of the auth endpoint without leaving tokens alive forever.
const TokenTTL = 7 * 24 * time.Hour

// Claims carries the authenticated user's identity inside a signed token.
type Claims struct {
	UserID  uuid.UUID `json:"uid"`
	IsAdmin bool      `json:"admin"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates the API's bearer tokens.
type TokenManager struct {
	secret []byte
}

// NewTokenManager returns a TokenManager signing with the given secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Generate issues an HS256 token for the user, valid for TokenTTL.
func (m *TokenManager) Generate(user *models.User) (string, error) {
	claims := Claims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
