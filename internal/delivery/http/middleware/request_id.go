package middleware

import (
	"context"

	"portfolio-email-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key read by the response writers.
	RequestIDKey = domain.GinKeyRequestID
	// RequestIDHeader carries the id in and out.
	RequestIDHeader = "X-Request-ID"
)

// RequestID tags every request with an id, reusing one set by a proxy when present.
// The id is stored on the gin context and on the request context for the usecases.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), domain.KeyRequestID, requestID))

		c.Next()
	}
}
