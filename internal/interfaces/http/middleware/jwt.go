package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/interfaces/http/dto"
)

// Context keys set by the JWT middleware
const (
	ContextKeyClaims = "jwt_claims"
	ContextKeyUserID = "jwt_user_id"
	ContextKeyEmail  = "jwt_email"
	ContextKeyRole   = "jwt_role"
)

// JWTMiddlewareConfig configures the JWT authentication middleware
type JWTMiddlewareConfig struct {
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths lists exact request paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes that bypass authentication
	SkipPathPrefixes []string
	// SkipFunc, when set, bypasses authentication for requests it returns
	// true for. Used for routes whose public/protected split depends on
	// the HTTP method.
	SkipFunc func(c *gin.Context) bool
	Logger   *zap.Logger
}

// JWTAuth returns a middleware that validates Bearer tokens and stores
// the claims on the gin context.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkip(c, cfg) {
			c.Next()
			return
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			abortAuth(c, dto.ErrCodeUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleTokenError(c, err)
			return
		}

		if revoked := isRevoked(c, cfg, claims); revoked {
			abortAuth(c, dto.ErrCodeTokenRevoked, "token has been revoked")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

func shouldSkip(c *gin.Context, cfg JWTMiddlewareConfig) bool {
	path := c.Request.URL.Path
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if cfg.SkipFunc != nil && cfg.SkipFunc(c) {
		return true
	}
	return false
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("malformed authorization header")
	}
	return parts[1], nil
}

// isRevoked checks the token against the blacklist. Blacklist lookup
// failures are logged and treated as not revoked so that a Redis outage
// does not lock every user out.
func isRevoked(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	if cfg.TokenBlacklist == nil {
		return false
	}

	if claims.ID != "" {
		blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			logBlacklistError(cfg.Logger, "jti blacklist check failed", err)
		} else if blacklisted {
			return true
		}
	}

	if claims.IssuedAt != nil {
		invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(
			c.Request.Context(), claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			logBlacklistError(cfg.Logger, "user invalidation check failed", err)
		} else if invalidated {
			return true
		}
	}

	return false
}

func logBlacklistError(logger *zap.Logger, msg string, err error) {
	if logger != nil {
		logger.Warn(msg, zap.Error(err))
	}
}

func handleTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortAuth(c, dto.ErrCodeTokenExpired, "token has expired")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		abortAuth(c, dto.ErrCodeTokenRevoked, "token has been revoked")
	case errors.Is(err, auth.ErrTokenNotYetValid):
		abortAuth(c, dto.ErrCodeTokenInvalid, "token is not yet valid")
	default:
		abortAuth(c, dto.ErrCodeTokenInvalid, "invalid token")
	}
}

func abortAuth(c *gin.Context, code, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// GetJWTClaims returns the validated claims from the gin context
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetJWTUserID returns the authenticated user ID from the gin context
func GetJWTUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextKeyUserID)
	return userID, userID != ""
}

// GetJWTRole returns the authenticated user's role from the gin context
func GetJWTRole(c *gin.Context) (string, bool) {
	role := c.GetString(ContextKeyRole)
	return role, role != ""
}
