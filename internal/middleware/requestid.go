package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the HTTP header used to propagate the request identifier
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key holding the request id string
	RequestIDKey = "request_id"

	// maxRequestIDLength bounds caller-supplied ids before they reach the logs
	maxRequestIDLength = 128
)

type requestIDContextKey struct{}

// RequestIDMiddleware ensures every request carries an X-Request-ID.
//
// An inbound header is reused when present and at most 128 bytes long; otherwise a
// UUID v4 is generated. The id is stored in the gin.Context under RequestIDKey, in the
// request's context.Context (see RequestIDFromContext) and echoed in the response header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDContextKey{}, id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

// RequestIDFromContext returns the id stored by RequestIDMiddleware, or "" if none
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
