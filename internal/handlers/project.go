package handlers

import (
	"net/http"
	"strings"
	"time"

	"maint-tracker/internal/models"
	"maint-tracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

// dueDateLayouts are tried in order; plain dates come from the date picker.
var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &tracker.ValidationError{Field: "dueDate", Message: "Invalid due date: " + value}
}

// projectBody accepts dueDate as a plain date as well as RFC 3339.
type projectBody struct {
	models.ProjectInput
	DueDate *string `json:"dueDate"`
}

// patchBody reads "dueDate": "" as clearing the due date. A JSON null is the
// same as leaving the field out.
type patchBody struct {
	models.ProjectPatch
	DueDate *string `json:"dueDate"`
}

func filterFromQuery(c *gin.Context) tracker.Filter {
	return tracker.Filter{
		Query:    c.Query("q"),
		Status:   models.ProjectStatus(c.Query("status")),
		Priority: models.Priority(c.Query("priority")),
		Type:     models.ProjectType(c.Query("type")),
		Area:     models.Area(c.Query("area")),
	}
}

//
// ПРОЕКТЫ
//

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var body projectBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	due, err := parseDueDate(body.DueDate)
	if err != nil {
		renderError(c, err)
		return
	}
	in := body.ProjectInput
	in.DueDate = due

	p, err := h.svc.CreateProject(c.Request.Context(), currentUser(c), in)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	var body patchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	due, err := parseDueDate(body.DueDate)
	if err != nil {
		renderError(c, err)
		return
	}
	patch := body.ProjectPatch
	patch.DueDate = due
	patch.ClearDueDate = body.DueDate != nil && due == nil

	p, err := h.svc.UpdateProject(c.Request.Context(), currentUser(c), c.Param("id"), patch)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
