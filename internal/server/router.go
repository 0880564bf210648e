package server

import (
	"net/http"

	"maint-tracker/internal/config"
	"maint-tracker/internal/handlers"
	"maint-tracker/internal/middleware"
	"maint-tracker/internal/tracker"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "tracker_session"

// maxUploadMemory bounds the part of a multipart upload kept in memory.
const maxUploadMemory = 32 << 20

func NewRouter(cfg *config.Config, svc *tracker.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.MaxMultipartMemory = maxUploadMemory

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.InjectUser())

	h := handlers.New(svc)
	api := r.Group("/api")

	// СЕССИЯ
	api.GET("/session", h.GetSession)
	api.POST("/session", h.SetSession)
	api.DELETE("/session", h.ClearSession)

	// ПРОЕКТЫ
	api.GET("/projects", h.ListProjects)
	api.POST("/projects", h.CreateProject)
	api.GET("/projects/:id", h.GetProject)
	api.PATCH("/projects/:id", h.UpdateProject)
	api.DELETE("/projects/:id", h.DeleteProject)

	// заметки и фото
	api.GET("/projects/:id/notes", h.ListNotes)
	api.POST("/projects/:id/notes", h.AddNote)
	api.POST("/projects/:id/photos", h.UploadPhotos)
	api.GET("/projects/:id/photos/:photoId", h.GetPhoto)
	api.DELETE("/projects/:id/photos/:photoId", h.DeletePhoto)

	// АУДИТ
	api.GET("/projects/:id/audit", h.ProjectAudit)
	api.GET("/audit", h.ListAudit)

	// ОТЧЁТЫ
	api.GET("/stats", h.Stats)
	api.GET("/export.csv", h.ExportCSV)
	api.GET("/backup", h.Backup)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
