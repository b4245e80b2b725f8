package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nfehub/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body size. Declared oversize requests are
// rejected immediately; streaming requests are capped by MaxBytesReader.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Request body exceeds maximum allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
