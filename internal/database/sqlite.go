package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"maint-tracker/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	area TEXT NOT NULL,
	requestor TEXT NOT NULL,
	assigned_to TEXT NOT NULL,
	priority TEXT NOT NULL,
	status TEXT NOT NULL,
	est_cost REAL NOT NULL DEFAULT 0,
	actual_cost REAL NOT NULL DEFAULT 0,
	progress INTEGER NOT NULL DEFAULT 0,
	created_date TEXT NOT NULL,
	updated_date TEXT NOT NULL,
	due_date TEXT,
	is_deleted INTEGER NOT NULL DEFAULT 0,
	deleted_date TEXT
);

CREATE TABLE IF NOT EXISTS photos (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	position INTEGER NOT NULL DEFAULT 0,
	filename TEXT NOT NULL,
	content_type TEXT NOT NULL,
	data TEXT NOT NULL,
	checksum TEXT,
	uploaded_at TEXT NOT NULL,
	uploaded_by TEXT,
	size INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL,
	text TEXT NOT NULL,
	author TEXT,
	timestamp TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL,
	action TEXT NOT NULL,
	field TEXT,
	old_value TEXT,
	new_value TEXT,
	user_id TEXT,
	timestamp TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS counters (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_photos_project ON photos(project_id, position);
CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project_id);
CREATE INDEX IF NOT EXISTS idx_audit_project ON audit_log(project_id);
`

const projectColumns = `id, seq, name, type, area, requestor, assigned_to, priority, status,
	est_cost, actual_cost, progress, created_date, updated_date, due_date, is_deleted, deleted_date`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLiteStore keeps the tracker in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and creates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// The pragma is part of the DSN so every new connection gets it.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serialises writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func (s *SQLiteStore) NextProjectSeq(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES ('project', 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to advance project sequence: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = 'project'`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read project sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return seq, nil
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p *models.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := createSQLiteProject(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func createSQLiteProject(ctx context.Context, tx *sql.Tx, p *models.Project) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Seq, p.Name, p.Type, p.Area, p.Requestor, p.AssignedTo, p.Priority, p.Status,
		p.EstCost, p.ActualCost, p.Progress, formatTime(p.CreatedDate), formatTime(p.UpdatedDate),
		formatNullTime(p.DueDate), p.IsDeleted, formatNullTime(p.DeletedDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return insertSQLitePhotos(ctx, tx, p)
}

func insertSQLitePhotos(ctx context.Context, tx *sql.Tx, p *models.Project) error {
	for i, ph := range p.Photos {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO photos (id, project_id, position, filename, content_type, data, checksum, uploaded_at, uploaded_by, size)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ph.ID, p.ID, i, ph.Filename, ph.ContentType, ph.Data, ph.Checksum,
			formatTime(ph.UploadedAt), ph.UploadedBy, ph.Size,
		)
		if err != nil {
			return fmt.Errorf("failed to store photo %s: %w", ph.Filename, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (models.Project, error) {
	var (
		p                    models.Project
		created, updated     string
		dueDate, deletedDate sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Seq, &p.Name, &p.Type, &p.Area, &p.Requestor, &p.AssignedTo, &p.Priority, &p.Status,
		&p.EstCost, &p.ActualCost, &p.Progress, &created, &updated, &dueDate, &p.IsDeleted, &deletedDate,
	)
	if err != nil {
		return models.Project{}, err
	}

	if p.CreatedDate, err = parseTime(created); err != nil {
		return models.Project{}, err
	}
	if p.UpdatedDate, err = parseTime(updated); err != nil {
		return models.Project{}, err
	}
	if p.DueDate, err = parseNullTime(dueDate); err != nil {
		return models.Project{}, err
	}
	if p.DeletedDate, err = parseNullTime(deletedDate); err != nil {
		return models.Project{}, err
	}
	p.Photos = []models.Photo{}
	return p, nil
}

// loadPhotos returns photos grouped by project id, in position order.
func (s *SQLiteStore) loadPhotos(ctx context.Context, projectID string) (map[string][]models.Photo, error) {
	query := `SELECT id, project_id, position, filename, content_type, data, checksum, uploaded_at, uploaded_by, size
		FROM photos`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY project_id, position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	defer rows.Close()

	out := map[string][]models.Photo{}
	for rows.Next() {
		var (
			ph                   models.Photo
			checksum, uploadedBy sql.NullString
			uploadedAt           string
		)
		if err := rows.Scan(&ph.ID, &ph.ProjectID, &ph.Position, &ph.Filename, &ph.ContentType,
			&ph.Data, &checksum, &uploadedAt, &uploadedBy, &ph.Size); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		ph.Checksum = checksum.String
		ph.UploadedBy = uploadedBy.String
		if ph.UploadedAt, err = parseTime(uploadedAt); err != nil {
			return nil, err
		}
		out[ph.ProjectID] = append(out[ph.ProjectID], ph)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (models.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to get project: %w", err)
	}

	photos, err := s.loadPhotos(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if ph, ok := photos[id]; ok {
		p.Photos = ph
	}
	return p, nil
}

func (s *SQLiteStore) SaveProject(ctx context.Context, p *models.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveSQLiteProject(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func saveSQLiteProject(ctx context.Context, tx *sql.Tx, p *models.Project) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE projects SET name = ?, type = ?, area = ?, requestor = ?, assigned_to = ?, priority = ?,
			status = ?, est_cost = ?, actual_cost = ?, progress = ?, updated_date = ?, due_date = ?,
			is_deleted = ?, deleted_date = ?
		WHERE id = ?`,
		p.Name, p.Type, p.Area, p.Requestor, p.AssignedTo, p.Priority,
		p.Status, p.EstCost, p.ActualCost, p.Progress, formatTime(p.UpdatedDate), formatNullTime(p.DueDate),
		p.IsDeleted, formatNullTime(p.DeletedDate), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to replace photos: %w", err)
	}
	return insertSQLitePhotos(ctx, tx, p)
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	photos, err := s.loadPhotos(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if ph, ok := photos[projects[i].ID]; ok {
			projects[i].Photos = ph
		}
	}
	return projects, nil
}

func (s *SQLiteStore) CreateNote(ctx context.Context, n *models.Note) error {
	return insertSQLiteNote(ctx, s.db, n)
}

func insertSQLiteNote(ctx context.Context, db execer, n *models.Note) error {
	result, err := db.ExecContext(ctx, `
		INSERT INTO notes (project_id, text, author, timestamp) VALUES (?, ?, ?, ?)`,
		n.ProjectID, n.Text, n.Author, formatTime(n.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read note id: %w", err)
	}
	n.ID = uint(id)
	return nil
}

func (s *SQLiteStore) ListNotes(ctx context.Context, projectID string) ([]models.Note, error) {
	query := `SELECT id, project_id, text, author, timestamp FROM notes`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var (
			n      models.Note
			author sql.NullString
			ts     string
		)
		if err := rows.Scan(&n.ID, &n.ProjectID, &n.Text, &author, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.Author = author.String
		if n.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) AppendAudit(ctx context.Context, e *models.AuditEntry) error {
	return insertSQLiteAudit(ctx, s.db, e)
}

func insertSQLiteAudit(ctx context.Context, db execer, e *models.AuditEntry) error {
	result, err := db.ExecContext(ctx, `
		INSERT INTO audit_log (project_id, action, field, old_value, new_value, user_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ProjectID, e.Action, nullString(e.Field), nullString(e.OldValue), nullString(e.NewValue),
		e.UserID, formatTime(e.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read audit id: %w", err)
	}
	e.ID = uint(id)
	return nil
}

func (s *SQLiteStore) ListAudit(ctx context.Context, projectID string) ([]models.AuditEntry, error) {
	query := `SELECT id, project_id, action, field, old_value, new_value, user_id, timestamp FROM audit_log`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var (
			e                         models.AuditEntry
			field, oldValue, newValue sql.NullString
			userID                    sql.NullString
			ts                        string
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Action, &field, &oldValue, &newValue, &userID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Field = stringPtr(field)
		e.OldValue = stringPtr(oldValue)
		e.NewValue = stringPtr(newValue)
		e.UserID = userID.String
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Commit(ctx context.Context, c Change) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if p := c.Project; p != nil {
		if c.Create {
			err = createSQLiteProject(ctx, tx, p)
		} else {
			err = saveSQLiteProject(ctx, tx, p)
		}
		if err != nil {
			return err
		}
		if c.DeleteNotes {
			if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE project_id = ?`, p.ID); err != nil {
				return fmt.Errorf("failed to delete notes: %w", err)
			}
		}
	}
	if c.Note != nil {
		if err := insertSQLiteNote(ctx, tx, c.Note); err != nil {
			return err
		}
	}
	for i := range c.Audit {
		if err := insertSQLiteAudit(ctx, tx, &c.Audit[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
