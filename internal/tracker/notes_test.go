package tracker

import (
	"context"
	"testing"

	"maint-tracker/internal/models"
)

func TestAddNote(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Bar taps")

	n, err := svc.AddNote(ctx, p.ID, "  Ordered new couplers.  ", "Bar Manager")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	if n.ID == 0 || n.Text != "Ordered new couplers." || n.Author != "Bar Manager" || n.ProjectID != p.ID {
		t.Fatalf("unexpected note: %+v", n)
	}

	trail, _ := svc.AuditTrail(ctx, p.ID)
	last := trail[len(trail)-1]
	if last.Action != models.ActionAddNote || *last.Field != "notes" || *last.NewValue != n.Text || last.UserID != "Bar Manager" {
		t.Fatalf("unexpected ADD_NOTE entry: %+v", last)
	}
}

func TestAddNoteRejectsEmptyText(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Bar taps")

	for _, text := range []string{"", "   \n\t"} {
		if _, err := svc.AddNote(ctx, p.ID, text, "someone"); !IsValidation(err) {
			t.Fatalf("text %q: expected validation error, got %v", text, err)
		}
	}

	notes, _ := svc.ListNotes(ctx, p.ID)
	if len(notes) != 0 {
		t.Fatalf("notes count changed: %d", len(notes))
	}
	trail, _ := svc.AuditTrail(ctx, p.ID)
	if len(trail) != 1 {
		t.Fatalf("no ADD_NOTE entry expected, got %+v", trail)
	}
}

func TestAddNoteUnknownProject(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.AddNote(context.Background(), "PRJ-777", "hello", "x"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListNotesNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "A")
	b := mustCreate(t, svc, "B")

	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.AddNote(ctx, a.ID, text, "crew"); err != nil {
			t.Fatalf("add note: %v", err)
		}
	}
	if _, err := svc.AddNote(ctx, b.ID, "other", "crew"); err != nil {
		t.Fatalf("add note: %v", err)
	}

	notes, err := svc.ListNotes(ctx, a.ID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(notes) != len(want) {
		t.Fatalf("got %d notes, want %d", len(notes), len(want))
	}
	for i, text := range want {
		if notes[i].Text != text {
			t.Fatalf("note %d = %q, want %q", i, notes[i].Text, text)
		}
	}
}
