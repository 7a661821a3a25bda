package demo

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const blockedMessage = "this action is disabled in demo mode"

// Middleware blocks write operations in demo mode.
// Read-only operations (GET) are always allowed, as are the login and
// logout endpoints so visitors can browse as a seeded user.
type Middleware struct {
	enabled bool
	allowed map[string]bool
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{
		enabled: enabled,
		allowed: map[string]bool{
			"/api/users/login":  true,
			"/api/users/logout": true,
		},
	}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m != nil && m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.IsEnabled() {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if m.allowed[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     blockedMessage,
			"demo_mode": true,
		})
	}
}
