// Package auth carries the authenticated backend user through request contexts.
package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser is the key for the authenticated user name in a request context
const ContextKeyUser ContextKey = "user"

func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(ContextKeyUser).(string)
	return user, ok && user != ""
}

// BasicAuth guards the routes behind it with HTTP basic auth and copies the
// authenticated user into the request context. With no accounts it lets
// every request through anonymously.
func BasicAuth(accounts map[string]string) gin.HandlerFunc {
	if len(accounts) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	check := gin.BasicAuth(gin.Accounts(accounts))
	return func(c *gin.Context) {
		check(c)
		if c.IsAborted() {
			return
		}

		user := c.GetString(gin.AuthUserKey)
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		c.Next()
	}
}
