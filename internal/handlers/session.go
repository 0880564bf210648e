package handlers

import (
	"net/http"
	"strings"

	"maint-tracker/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type sessionForm struct {
	User string `json:"user" form:"user"`
}

// GetSession reports who changes are attributed to.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// SetSession stores the display name used for audit attribution. It is not a login.
func (h *Handler) SetSession(c *gin.Context) {
	var form sessionForm
	if err := c.ShouldBind(&form); err != nil || strings.TrimSpace(form.User) == "" {
		badRequest(c, "User is required")
		return
	}
	user := strings.TrimSpace(form.User)

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserKey, user)
	if err := sess.Save(); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) ClearSession(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
