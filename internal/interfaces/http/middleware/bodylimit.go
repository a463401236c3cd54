package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailcore/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request body size. Declared lengths over the cap are
// rejected up front; chunked bodies are capped by MaxBytesReader while
// the handler reads.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "request body exceeds the configured limit"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
