package handlers

import (
	"errors"
	"net/http"

	"maint-tracker/internal/logutils"
	"maint-tracker/internal/middleware"
	"maint-tracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

// Handler serves the JSON API on top of a tracker.Service.
type Handler struct {
	svc *tracker.Service
}

func New(svc *tracker.Service) *Handler {
	return &Handler{svc: svc}
}

func currentUser(c *gin.Context) string {
	return middleware.CurrentUser(c)
}

// renderError writes {error} with the status matching the error kind.
func renderError(c *gin.Context, err error) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case tracker.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		logutils.Log.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
