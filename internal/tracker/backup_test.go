package tracker

import (
	"context"
	"encoding/json"
	"testing"
)

func TestBackupIncludesDeletedProjects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "Keep")
	gone := mustCreate(t, svc, "Gone")
	if _, err := svc.AddNote(ctx, gone.ID, "before removal", "x"); err != nil {
		t.Fatalf("add note: %v", err)
	}
	if err := svc.DeleteProject(ctx, "", gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	b, err := svc.Backup(ctx)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if len(b.Projects) != 2 || !b.Projects[1].IsDeleted {
		t.Fatalf("backup should hold deleted projects: %+v", b.Projects)
	}
	if len(b.Notes) != 0 {
		t.Fatalf("cascaded notes should not be in backup: %+v", b.Notes)
	}
	if len(b.AuditLog) != 4 {
		t.Fatalf("audit log entries = %d, want 4", len(b.AuditLog))
	}
	if b.Metadata.Version != "1.0" || b.Metadata.Created.IsZero() || !b.Timestamp.After(b.Metadata.Created) {
		t.Fatalf("unexpected metadata: %+v at %v", b.Metadata, b.Timestamp)
	}

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"projects", "notes", "auditLog", "metadata", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("backup json missing %q", key)
		}
	}
}
