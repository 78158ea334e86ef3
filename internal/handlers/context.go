package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext extracts the context handlers pass down to the services.
// Handlers exercised without a real request fall back to the background
// context.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}
