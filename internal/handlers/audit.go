package handlers

import (
	"net/http"

	"maint-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) renderAudit(c *gin.Context, projectID string) {
	entries, err := h.svc.AuditTrail(c.Request.Context(), projectID)
	if err != nil {
		renderError(c, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// ProjectAudit returns the trail of one project. Deleted projects keep theirs.
func (h *Handler) ProjectAudit(c *gin.Context) {
	h.renderAudit(c, c.Param("id"))
}

func (h *Handler) ListAudit(c *gin.Context) {
	h.renderAudit(c, "")
}
