package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecom/backend/internal/interfaces/http/dto"
)

// RoleAdmin is the role granting store management access
const RoleAdmin = "admin"

// RequireRole returns a middleware that rejects requests whose
// authenticated user does not carry the given role. It must run after
// JWTAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetJWTClaims(c)
		if !ok {
			abortAuth(c, dto.ErrCodeUnauthorized, "authentication required")
			return
		}

		if claims.Role != role {
			requestID := c.GetString("request_id")
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "insufficient permissions", requestID))
			return
		}

		c.Next()
	}
}

// RequireAdmin is shorthand for RequireRole(RoleAdmin)
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}
