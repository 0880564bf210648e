// Package database holds the entity stores behind the tracker: an in-memory
// store, a PostgreSQL store built on gorm and a SQLite file store.
//
// Every store keeps projects in insertion order, never reuses project or note
// ids and treats the audit log as append-only.
package database

import (
	"context"
	"errors"

	"maint-tracker/internal/models"
)

// ErrNotFound is returned when a project does not exist in the store.
var ErrNotFound = errors.New("record not found")

// Change is a mutation written together with the audit entries describing it.
// A store applies all of it or none of it.
type Change struct {
	// Project is inserted when Create is set and replaced otherwise.
	Project *models.Project
	Create  bool
	// Note is inserted and receives its id.
	Note *models.Note
	// DeleteNotes removes every note of Project.
	DeleteNotes bool
	// Audit entries are appended in order and receive their ids.
	Audit []models.AuditEntry
}

type Store interface {
	// NextProjectSeq hands out the next value of the monotonic project counter.
	NextProjectSeq(ctx context.Context) (int, error)
	CreateProject(ctx context.Context, p *models.Project) error
	// GetProject returns the project including soft-deleted ones.
	GetProject(ctx context.Context, id string) (models.Project, error)
	// SaveProject replaces the stored project, photos included.
	SaveProject(ctx context.Context, p *models.Project) error
	// ListProjects returns every project, soft-deleted ones included, ordered by Seq.
	ListProjects(ctx context.Context) ([]models.Project, error)

	CreateNote(ctx context.Context, n *models.Note) error
	// ListNotes returns notes in insertion order. An empty projectID lists all notes.
	ListNotes(ctx context.Context, projectID string) ([]models.Note, error)

	AppendAudit(ctx context.Context, e *models.AuditEntry) error
	// ListAudit returns entries in insertion order. An empty projectID lists the whole log.
	ListAudit(ctx context.Context, projectID string) ([]models.AuditEntry, error)

	// Commit applies c atomically. Replacing a missing project returns ErrNotFound.
	Commit(ctx context.Context, c Change) error

	Close() error
}
