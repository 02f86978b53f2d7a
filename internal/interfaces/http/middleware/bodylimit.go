package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecom/backend/internal/interfaces/http/dto"
)

// DefaultBodyLimit caps request bodies at 2 MiB
const DefaultBodyLimit = 2 << 20

// BodyLimit rejects request bodies larger than the default limit
func BodyLimit() gin.HandlerFunc {
	return BodyLimitWithSize(DefaultBodyLimit)
}

// BodyLimitWithSize rejects request bodies larger than maxBytes. Multipart
// uploads are exempt; their parts are bounded by the product photo limit
// instead.
func BodyLimitWithSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "request body too large"))
			return
		}

		// ContentLength can be -1 for chunked bodies; MaxBytesReader
		// enforces the limit on read
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
