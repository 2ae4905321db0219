// Package httputils provides utilities for HTTP requests.
package httputils

import (
	"context"

	"github.com/gin-gonic/gin"
)

// httputilsContextKey is the key type for request metadata in the context.
type httputilsContextKey string

const (
	// contextKeyClient is the key for the client identity in the context.
	contextKeyClient httputilsContextKey = "httputils:client"
)

// ClientMiddleware puts the caller's User-Agent into the context so that
// analytics events can attribute gradings to a client.
func ClientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		newCtx := context.WithValue(c.Request.Context(), contextKeyClient, c.GetHeader("User-Agent"))
		c.Request = c.Request.WithContext(newCtx)
		c.Next()
	}
}

// GetClientID returns the client identity from the context.
func GetClientID(ctx context.Context) string {
	if client, ok := ctx.Value(contextKeyClient).(string); ok && client != "" {
		return client
	}

	return "unknown-client"
}
