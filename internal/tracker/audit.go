package tracker

import (
	"context"
	"errors"

	"maint-tracker/internal/database"
	"maint-tracker/internal/models"
)

// Log appends e to the audit log as given, stamping the time when unset.
func (s *Service) Log(ctx context.Context, e models.AuditEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if err := s.store.AppendAudit(ctx, &e); err != nil {
		return storageErr("append audit entry", err)
	}
	return nil
}

func (s *Service) entry(projectID string, action models.AuditAction, field, oldValue, newValue *string, actor string) models.AuditEntry {
	return models.AuditEntry{
		ProjectID: projectID,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		UserID:    actorOrDefault(actor),
		Timestamp: s.now(),
	}
}

// commit stores a mutation together with its audit entries.
func (s *Service) commit(ctx context.Context, op string, c database.Change) error {
	err := s.store.Commit(ctx, c)
	if err == nil {
		return nil
	}
	if errors.Is(err, database.ErrNotFound) && c.Project != nil {
		return &NotFoundError{Kind: "project", ID: c.Project.ID}
	}
	return storageErr(op, err)
}

// AuditTrail returns the entries of one project, or the whole log when
// projectID is empty, oldest first.
func (s *Service) AuditTrail(ctx context.Context, projectID string) ([]models.AuditEntry, error) {
	entries, err := s.store.ListAudit(ctx, projectID)
	if err != nil {
		return nil, storageErr("list audit log", err)
	}
	return entries, nil
}
