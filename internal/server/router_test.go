package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"maint-tracker/internal/config"
	"maint-tracker/internal/database"
	"maint-tracker/internal/models"
	"maint-tracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{SessionSecret: "test-secret"}
	return NewRouter(cfg, tracker.New(database.NewMemoryStore()))
}

func doJSONRequest(t *testing.T, r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func projectPayload(name string) map[string]any {
	return map[string]any{
		"name":       name,
		"type":       "Preventive",
		"area":       "Golf Course",
		"requestor":  "Head Groundskeeper",
		"assignedTo": "Maintenance Team A",
		"priority":   "High",
		"status":     "In Progress",
		"estCost":    300,
		"actualCost": 270,
		"progress":   75,
		"dueDate":    "2025-07-01",
	}
}

func createProject(t *testing.T, r http.Handler, name string) models.Project {
	t.Helper()
	rec := doJSONRequest(t, r, http.MethodPost, "/api/projects", projectPayload(name))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[models.Project](t, rec)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSONRequest(t, r, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}

func TestProjectLifecycle(t *testing.T) {
	r := newTestRouter(t)

	p := createProject(t, r, "Greens Aeration")
	if p.ID != "PRJ-001" || p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2025-07-01" {
		t.Fatalf("unexpected project: %+v", p)
	}

	rec := doJSONRequest(t, r, http.MethodPatch, "/api/projects/PRJ-001", map[string]any{"status": "Completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.Project](t, rec); got.Status != models.StatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}

	rec = doJSONRequest(t, r, http.MethodGet, "/api/projects?status=Completed", nil)
	if list := decode[[]models.Project](t, rec); len(list) != 1 {
		t.Fatalf("filtered list: %+v", list)
	}

	rec = doJSONRequest(t, r, http.MethodDelete, "/api/projects/PRJ-001", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSONRequest(t, r, http.MethodGet, "/api/projects/PRJ-001", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", rec.Code)
	}

	rec = doJSONRequest(t, r, http.MethodGet, "/api/projects/PRJ-001/audit", nil)
	trail := decode[[]models.AuditEntry](t, rec)
	if len(trail) != 3 || trail[0].Action != models.ActionCreate || trail[1].Action != models.ActionUpdate || trail[2].Action != models.ActionDelete {
		t.Fatalf("unexpected trail: %+v", trail)
	}
	if trail[0].UserID != tracker.DefaultActor {
		t.Fatalf("user = %q, want default actor", trail[0].UserID)
	}
}

func TestPatchClearsDueDate(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, "Range nets")

	rec := doJSONRequest(t, r, http.MethodPatch, "/api/projects/PRJ-001", map[string]any{"name": "Range nets v2", "dueDate": nil})
	if got := decode[models.Project](t, rec); got.DueDate == nil {
		t.Fatalf("null dueDate should leave the date alone")
	}

	rec = doJSONRequest(t, r, http.MethodPatch, "/api/projects/PRJ-001", map[string]any{"dueDate": ""})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.Project](t, rec); got.DueDate != nil {
		t.Fatalf("due date not cleared: %v", got.DueDate)
	}

	rec = doJSONRequest(t, r, http.MethodGet, "/api/projects/PRJ-001/audit", nil)
	trail := decode[[]models.AuditEntry](t, rec)
	last := trail[len(trail)-1]
	if last.Field == nil || *last.Field != "dueDate" || last.NewValue != nil {
		t.Fatalf("unexpected last entry: %+v", last)
	}
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, "Existing")

	missingName := projectPayload("")
	badProgress := map[string]any{"progress": 140}

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{"missing name", http.MethodPost, "/api/projects", missingName, http.StatusBadRequest, "Missing required field: name"},
		{"bad due date", http.MethodPost, "/api/projects", map[string]any{"name": "x", "dueDate": "soon"}, http.StatusBadRequest, "Invalid due date: soon"},
		{"bad progress", http.MethodPatch, "/api/projects/PRJ-001", badProgress, http.StatusBadRequest, "Progress must be between 0 and 100"},
		{"patch missing", http.MethodPatch, "/api/projects/PRJ-404", map[string]any{"status": "Completed"}, http.StatusNotFound, "project PRJ-404 not found"},
		{"delete missing", http.MethodDelete, "/api/projects/PRJ-404", nil, http.StatusNotFound, "project PRJ-404 not found"},
		{"note without author", http.MethodPost, "/api/projects/PRJ-001/notes", map[string]any{"text": "hi"}, http.StatusBadRequest, "Text and author are required"},
		{"note on missing", http.MethodPost, "/api/projects/PRJ-404/notes", map[string]any{"text": "hi", "author": "x"}, http.StatusNotFound, "project PRJ-404 not found"},
		{"photo missing", http.MethodGet, "/api/projects/PRJ-001/photos/nope", nil, http.StatusNotFound, "photo nope not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSONRequest(t, r, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			body := decode[map[string]string](t, rec)
			if body["error"] != tt.message {
				t.Fatalf("error = %q, want %q", body["error"], tt.message)
			}
		})
	}

	rec := doJSONRequest(t, r, http.MethodGet, "/api/projects", nil)
	if list := decode[[]models.Project](t, rec); len(list) != 1 {
		t.Fatalf("failed requests should not add projects: %d", len(list))
	}
}

func TestNotes(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, "Bar taps")

	for _, text := range []string{"first", "second"} {
		rec := doJSONRequest(t, r, http.MethodPost, "/api/projects/PRJ-001/notes", map[string]any{"text": text, "author": "Bar Manager"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("add note: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSONRequest(t, r, http.MethodGet, "/api/projects/PRJ-001/notes", nil)
	notes := decode[[]models.Note](t, rec)
	if len(notes) != 2 || notes[0].Text != "second" {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}

func multipartPhotos(t *testing.T, files map[string][]byte, order []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range order {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photos"; filename="`+name+`"`)
		if strings.HasSuffix(name, ".png") {
			h.Set("Content-Type", "image/png")
		} else {
			h.Set("Content-Type", "text/plain")
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(files[name]); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestPhotoUploadAndDownload(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, "Pool deck")

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	body, ctype := multipartPhotos(t, map[string][]byte{
		"deck.png":   png,
		"readme.txt": []byte("plain text"),
	}, []string{"deck.png", "readme.txt"})

	req := httptest.NewRequest(http.MethodPost, "/api/projects/PRJ-001/photos", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}

	resp := decode[struct {
		Project models.Project         `json:"project"`
		Failed  []tracker.PhotoFailure `json:"failed"`
	}](t, rec)
	if len(resp.Project.Photos) != 1 || len(resp.Failed) != 1 || resp.Failed[0].Filename != "readme.txt" {
		t.Fatalf("unexpected upload result: %+v", resp)
	}
	ph := resp.Project.Photos[0]

	rec = doJSONRequest(t, r, http.MethodGet, "/api/projects/PRJ-001/photos/"+ph.ID, nil)
	if rec.Code != http.StatusOK || !bytes.Equal(rec.Body.Bytes(), png) {
		t.Fatalf("download: %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag != `"`+ph.Checksum+`"` || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected headers: %v", rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/projects/PRJ-001/photos/"+ph.ID, nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("conditional get: %d", rec.Code)
	}

	rec = doJSONRequest(t, r, http.MethodDelete, "/api/projects/PRJ-001/photos/"+ph.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete photo: %d %s", rec.Code, rec.Body.String())
	}
	if p := decode[models.Project](t, rec); len(p.Photos) != 0 {
		t.Fatalf("photo not removed: %+v", p.Photos)
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, "Pool deck")

	body, ctype := multipartPhotos(t, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/projects/PRJ-001/photos", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSessionAttributesChanges(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSONRequest(t, r, http.MethodPost, "/api/session", map[string]any{"user": "Facility Manager"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set session: %d %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()

	rec = doJSONRequest(t, r, http.MethodGet, "/api/session", nil, cookies...)
	if got := decode[map[string]string](t, rec); got["user"] != "Facility Manager" {
		t.Fatalf("session user = %q", got["user"])
	}

	rec = doJSONRequest(t, r, http.MethodPost, "/api/projects", projectPayload("Clubhouse HVAC"), cookies...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSONRequest(t, r, http.MethodGet, "/api/audit", nil)
	trail := decode[[]models.AuditEntry](t, rec)
	if len(trail) != 1 || trail[0].UserID != "Facility Manager" {
		t.Fatalf("unexpected attribution: %+v", trail)
	}

	rec = doJSONRequest(t, r, http.MethodPost, "/api/session", map[string]any{"user": " "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank user: %d", rec.Code)
	}
}

func TestReports(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSONRequest(t, r, http.MethodGet, "/api/export.csv", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != tracker.CSVHeader {
		t.Fatalf("empty export: %d %q", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") ||
		!strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
		t.Fatalf("unexpected export headers: %v", rec.Header())
	}

	createProject(t, r, "Greens Aeration")
	createProject(t, r, "Range Nets")
	doJSONRequest(t, r, http.MethodDelete, "/api/projects/PRJ-002", nil)

	rec = doJSONRequest(t, r, http.MethodGet, "/api/stats", nil)
	sum := decode[tracker.Summary](t, rec)
	if sum.Total != 1 || sum.Budget.Variance != -30 || sum.Budget.Status != tracker.BudgetUnder {
		t.Fatalf("unexpected stats: %+v", sum)
	}
	if sum.Database.AuditEntries != 3 {
		t.Fatalf("audit entries = %d, want 3", sum.Database.AuditEntries)
	}

	rec = doJSONRequest(t, r, http.MethodGet, "/api/backup", nil)
	b := decode[tracker.Backup](t, rec)
	if len(b.Projects) != 2 || b.Metadata.Version != "1.0" {
		t.Fatalf("unexpected backup: %+v", b)
	}
}
