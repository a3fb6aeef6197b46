// Package middleware holds the cross-cutting gin middleware.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the correlation header honoured on the way in and
// always present on the way out.
const HeaderRequestID = "X-Request-Id"

// ContextRequestID is the gin context key handlers read the id from.
const ContextRequestID = "requestID"

// RequestID tags every request with a correlation id: the caller's
// X-Request-Id when it sends one, a fresh uuid otherwise. Webhook log
// lines carry it so one delivery can be followed across entries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}
