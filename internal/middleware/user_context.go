package middleware

import (
	"strings"

	"maint-tracker/internal/tracker"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionUserKey is the session key holding the display name of the user.
	SessionUserKey = "user"
	// CurrentUserKey is the gin context key set by InjectUser.
	CurrentUserKey = "CurrentUser"
)

// InjectUser puts the name stored in the session into the context. Requests
// without a session act as tracker.DefaultActor.
func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := tracker.DefaultActor

		sess := sessions.Default(c)
		if raw, ok := sess.Get(SessionUserKey).(string); ok && strings.TrimSpace(raw) != "" {
			user = raw
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the name set by InjectUser.
func CurrentUser(c *gin.Context) string {
	if v, ok := c.Get(CurrentUserKey); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return tracker.DefaultActor
}
