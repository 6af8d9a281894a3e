package middleware

import (
	"errors"
	"net/http"

	"github.com/feedlot/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is refused up front; bodies of unknown length (streamed statement
// imports) fail on read with *http.MaxBytesError. A cap of zero or less turns
// the limit off.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			AbortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the body cap
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// AbortTooLarge answers 413 with the standard error envelope
func AbortTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeRequestTooLarge,
		"Request body exceeds maximum allowed size",
		c.GetString("request_id"),
	))
}
