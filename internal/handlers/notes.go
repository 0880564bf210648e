package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type noteForm struct {
	Text   string `json:"text" form:"text"`
	Author string `json:"author" form:"author"`
}

func (h *Handler) ListNotes(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.svc.GetProject(ctx, c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	notes, err := h.svc.ListNotes(ctx, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) AddNote(c *gin.Context) {
	var form noteForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(form.Text) == "" || strings.TrimSpace(form.Author) == "" {
		badRequest(c, "Text and author are required")
		return
	}

	n, err := h.svc.AddNote(c.Request.Context(), c.Param("id"), form.Text, form.Author)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}
