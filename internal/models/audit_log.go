package models

import "time"

type AuditAction string

const (
	ActionCreate      AuditAction = "CREATE"
	ActionUpdate      AuditAction = "UPDATE"
	ActionDelete      AuditAction = "DELETE"
	ActionAddNote     AuditAction = "ADD_NOTE"
	ActionAddPhoto    AuditAction = "ADD_PHOTO"
	ActionDeletePhoto AuditAction = "DELETE_PHOTO"
)

// AuditEntry records one change to a project. Entries are never updated or removed.
type AuditEntry struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ProjectID string      `gorm:"size:16;index;not null" json:"projectId"`
	Action    AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	Field     *string     `gorm:"size:50" json:"field"` // nil for whole-record actions
	OldValue  *string     `gorm:"type:text" json:"oldValue"`
	NewValue  *string     `gorm:"type:text" json:"newValue"`
	UserID    string      `gorm:"size:255" json:"userId"`
	Timestamp time.Time   `json:"timestamp"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}

// Clone returns a copy whose Field, OldValue and NewValue do not alias e's.
func (e AuditEntry) Clone() AuditEntry {
	out := e
	out.Field = cloneString(e.Field)
	out.OldValue = cloneString(e.OldValue)
	out.NewValue = cloneString(e.NewValue)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
