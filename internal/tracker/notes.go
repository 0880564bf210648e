package tracker

import (
	"context"
	"sort"
	"strings"

	"maint-tracker/internal/database"
	"maint-tracker/internal/logutils"
	"maint-tracker/internal/models"
)

// AddNote attaches a note to an active project and records ADD_NOTE.
func (s *Service) AddNote(ctx context.Context, projectID, text, author string) (models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Note{}, invalid("text", "Note text is required")
	}
	if _, err := s.activeProject(ctx, projectID); err != nil {
		return models.Note{}, err
	}

	n := models.Note{
		ProjectID: projectID,
		Text:      text,
		Author:    strings.TrimSpace(author),
		Timestamp: s.now(),
	}
	// ADD_NOTE is attributed to the note's author, not the session user.
	field := "notes"
	text = n.Text
	err := s.commit(ctx, "create note", database.Change{
		Note:  &n,
		Audit: []models.AuditEntry{s.entry(projectID, models.ActionAddNote, &field, nil, &text, n.Author)},
	})
	if err != nil {
		return models.Note{}, err
	}

	logutils.Log.WithFields(logutils.Fields{"project": projectID, "note": n.ID}).Info("note added")
	return n, nil
}

// ListNotes returns the project's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, projectID string) ([]models.Note, error) {
	notes, err := s.store.ListNotes(ctx, projectID)
	if err != nil {
		return nil, storageErr("list notes", err)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Timestamp.Equal(notes[j].Timestamp) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].Timestamp.After(notes[j].Timestamp)
	})
	return notes, nil
}
