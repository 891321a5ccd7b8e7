package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/riskids/riskids-betest/pkg/jwt"
	"github.com/riskids/riskids-betest/pkg/response"
)

const (
	UserIDKey     = "user_id"
	UserNameKey   = "user_name"
	AccountIDKey  = "account_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddleware validates bearer tokens issued by pkg/jwt.
type AuthMiddleware struct {
	tokens *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth returns a Gin middleware that validates bearer tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized,
				"Authorization token is required")
			return
		}

		token := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := m.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.AbortError(c, http.StatusUnauthorized, response.CodeTokenExpired,
					"Token has expired")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, response.CodeInvalidToken,
				"Invalid or expired token")
			return
		}

		// Set actor info in context
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserNameKey, claims.UserName)
		c.Set(AccountIDKey, claims.AccountID)

		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from Gin context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetUserName extracts the authenticated user name from Gin context.
func GetUserName(c *gin.Context) string {
	if name, exists := c.Get(UserNameKey); exists {
		return name.(string)
	}
	return ""
}

// GetAccountID extracts the authenticated login's account ID from Gin context.
func GetAccountID(c *gin.Context) string {
	if id, exists := c.Get(AccountIDKey); exists {
		return id.(string)
	}
	return ""
}
