package tracker

import (
	"context"
	"time"

	"maint-tracker/internal/models"
)

const backupVersion = "1.0"

type BackupMetadata struct {
	Version string    `json:"version"`
	Created time.Time `json:"created"`
}

// Backup is the full dump written by the backup endpoint and command.
type Backup struct {
	Projects  []models.Project    `json:"projects"`
	Notes     []models.Note       `json:"notes"`
	AuditLog  []models.AuditEntry `json:"auditLog"`
	Metadata  BackupMetadata      `json:"metadata"`
	Timestamp time.Time           `json:"timestamp"`
}

// Backup collects every record, soft-deleted projects included.
func (s *Service) Backup(ctx context.Context) (Backup, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return Backup{}, storageErr("backup projects", err)
	}
	notes, err := s.store.ListNotes(ctx, "")
	if err != nil {
		return Backup{}, storageErr("backup notes", err)
	}
	audit, err := s.store.ListAudit(ctx, "")
	if err != nil {
		return Backup{}, storageErr("backup audit log", err)
	}

	return Backup{
		Projects: projects,
		Notes:    notes,
		AuditLog: audit,
		Metadata: BackupMetadata{
			Version: backupVersion,
			Created: s.started,
		},
		Timestamp: s.now(),
	}, nil
}
