package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rigzlion8/watermaji/internal/domain"
	"github.com/rigzlion8/watermaji/internal/service"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// AuthMiddleware validates the bearer token and adds user info to the context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondErrorAbort(c, domain.ErrUnauthenticated)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondErrorAbort(c, domain.ErrUnauthenticated)
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			respondErrorAbort(c, domain.ErrInvalidToken)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RequireRole rejects requests whose token does not carry one of the roles.
// Must run after AuthMiddleware.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextRole)
		if !exists {
			respondErrorAbort(c, domain.ErrUnauthenticated)
			return
		}

		role, ok := value.(domain.UserRole)
		if !ok {
			respondErrorAbort(c, domain.ErrUnauthenticated)
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		respondErrorAbort(c, domain.ErrInsufficientPermissions)
	}
}

// userIDFromContext returns the authenticated user id set by AuthMiddleware
func userIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok
}
