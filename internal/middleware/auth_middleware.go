package middleware

import (
	"net/http"
	"strings"

	"swapcash/internal/services"
	"swapcash/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and stores the caller's identity
// on the request context.
func AuthRequired(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			c.Abort()
			return
		}

		c.Set("role", claims.Role)
		if claims.TelegramID != 0 {
			c.Set("telegram_id", claims.TelegramID)
		}
		if claims.Email != "" {
			c.Set("email", claims.Email)
		}

		c.Next()
	}
}

// AdminRequired ensures the caller authenticated as an operator.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if roleStr, ok := role.(string); !ok || roleStr != "admin" {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// TelegramID returns the authenticated user's Telegram ID from the request
// context, or false if the caller is not a user.
func TelegramID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("telegram_id")
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// AdminEmail returns the authenticated operator's email for audit trails.
func AdminEmail(c *gin.Context) string {
	if value, exists := c.Get("email"); exists {
		if email, ok := value.(string); ok {
			return email
		}
	}
	return "admin"
}
