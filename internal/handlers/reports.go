package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func datedFilename(prefix, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().UTC().Format("2006-01-02"), ext)
}

func (h *Handler) Stats(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	out, err := h.svc.ExportCSV(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", datedFilename("greensburg-projects", "csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

func (h *Handler) Backup(c *gin.Context) {
	b, err := h.svc.Backup(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", datedFilename("maintenance-tracker-backup", "json")))
	c.IndentedJSON(http.StatusOK, b)
}
