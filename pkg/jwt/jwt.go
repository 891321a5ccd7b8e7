package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the bearer token claims issued at login.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	AccountID string `json:"accountId"`
}

// Manager signs and verifies HS256 bearer tokens.
type Manager struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewManager creates a new JWT manager. Tokens expire after expiry.
func NewManager(secret string, expiry time.Duration, issuer string) *Manager {
	return &Manager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// Generate issues a token carrying the login's identity claims.
func (m *Manager) Generate(userID, userName, accountID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
		UserID:    userID,
		UserName:  userName,
		AccountID: accountID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates a token string and returns its claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
