package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"maint-tracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

// photoField is the multipart field carrying the uploaded files.
const photoField = "photos"

func readUpload(fh *multipart.FileHeader) (tracker.PhotoUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return tracker.PhotoUpload{}, err
	}
	defer f.Close()

	// one byte over the limit is enough for the size check
	data, err := io.ReadAll(io.LimitReader(f, tracker.MaxPhotoSize+1))
	if err != nil {
		return tracker.PhotoUpload{}, err
	}
	return tracker.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) UploadPhotos(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "Expected a multipart form")
		return
	}
	files := form.File[photoField]
	if len(files) == 0 {
		badRequest(c, "No photos uploaded")
		return
	}

	uploads := make([]tracker.PhotoUpload, 0, len(files))
	var failed []tracker.PhotoFailure
	for _, fh := range files {
		up, err := readUpload(fh)
		if err != nil {
			failed = append(failed, tracker.PhotoFailure{
				Filename: fh.Filename,
				Error:    fmt.Sprintf("Failed to read file %q.", fh.Filename),
			})
			continue
		}
		uploads = append(uploads, up)
	}

	p, rejected, err := h.svc.AddPhotos(c.Request.Context(), currentUser(c), c.Param("id"), uploads)
	if err != nil {
		renderError(c, err)
		return
	}
	failed = append(failed, rejected...)
	if failed == nil {
		failed = []tracker.PhotoFailure{}
	}

	c.JSON(http.StatusCreated, gin.H{"project": p, "failed": failed})
}

func (h *Handler) GetPhoto(c *gin.Context) {
	ph, err := h.svc.GetPhoto(c.Request.Context(), c.Param("id"), c.Param("photoId"))
	if err != nil {
		renderError(c, err)
		return
	}

	etag := `"` + ph.Checksum + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "private, max-age=3600")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	data, err := tracker.PhotoBytes(ph)
	if err != nil {
		renderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", ph.Filename))
	c.Data(http.StatusOK, ph.ContentType, data)
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	p, err := h.svc.RemovePhoto(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("photoId"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
