package middleware

import (
	"errors"
	"net/http"
	"strings"

	"titanax/internal/pkg/response"
	"titanax/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

type tokenVerifier interface {
	VerifyAccessToken(raw string) (*token.Claims, error)
}

// Auth is the access guard: it extracts the bearer credential, verifies it
// cryptographically and attaches the resolved identity to the request
// context. It never touches the user store.
func Auth(codec tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "No token provided. Authorization header is missing.")
			c.Abort()
			return
		}

		// Accept both "Bearer <token>" and a bare token; some clients omit
		// the scheme.
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if raw == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "No token provided.")
			c.Abort()
			return
		}

		claims, err := codec.VerifyAccessToken(raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrExpired):
				response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired. Please login again.")
			case errors.Is(err, token.ErrNotConfigured):
				response.Error(c, http.StatusInternalServerError, "CONFIGURATION_ERROR", "Server configuration error")
			default:
				response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token.")
			}
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("name", claims.Name)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		c.Next()
	}
}
