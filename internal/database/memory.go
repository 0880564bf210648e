package database

import (
	"context"
	"fmt"
	"sync"

	"maint-tracker/internal/models"
)

// MemoryStore keeps everything in process memory. Its contents are lost on
// restart, so callers seed it on startup.
type MemoryStore struct {
	mu sync.Mutex

	projects []models.Project
	index    map[string]int
	notes    []models.Note
	audit    []models.AuditEntry

	projectSeq int
	noteSeq    uint
	auditSeq   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: map[string]int{}}
}

func (s *MemoryStore) NextProjectSeq(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projectSeq++
	return s.projectSeq, nil
}

func (s *MemoryStore) CreateProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[p.ID]; ok {
		return fmt.Errorf("project %s already exists", p.ID)
	}
	s.index[p.ID] = len(s.projects)
	s.projects = append(s.projects, p.Clone())
	return nil
}

func (s *MemoryStore) GetProject(_ context.Context, id string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return models.Project{}, ErrNotFound
	}
	return s.projects[i].Clone(), nil
}

func (s *MemoryStore) SaveProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[p.ID]
	if !ok {
		return ErrNotFound
	}
	s.projects[i] = p.Clone()
	return nil
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *MemoryStore) CreateNote(_ context.Context, n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendNote(n)
	return nil
}

func (s *MemoryStore) appendNote(n *models.Note) {
	s.noteSeq++
	n.ID = s.noteSeq
	s.notes = append(s.notes, *n)
}

func (s *MemoryStore) ListNotes(_ context.Context, projectID string) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Note{}
	for _, n := range s.notes {
		if projectID == "" || n.ProjectID == projectID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemoryStore) AppendAudit(_ context.Context, e *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendAudit(e)
	return nil
}

func (s *MemoryStore) appendAudit(e *models.AuditEntry) {
	s.auditSeq++
	e.ID = s.auditSeq
	s.audit = append(s.audit, e.Clone())
}

func (s *MemoryStore) ListAudit(_ context.Context, projectID string) ([]models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.AuditEntry{}
	for _, e := range s.audit {
		if projectID == "" || e.ProjectID == projectID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Commit checks the project first so a failed change leaves nothing behind.
func (s *MemoryStore) Commit(_ context.Context, c Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := c.Project; p != nil {
		_, exists := s.index[p.ID]
		switch {
		case c.Create && exists:
			return fmt.Errorf("project %s already exists", p.ID)
		case !c.Create && !exists:
			return ErrNotFound
		}
	}

	if p := c.Project; p != nil {
		if c.Create {
			s.index[p.ID] = len(s.projects)
			s.projects = append(s.projects, p.Clone())
		} else {
			s.projects[s.index[p.ID]] = p.Clone()
		}
		if c.DeleteNotes {
			kept := s.notes[:0]
			for _, n := range s.notes {
				if n.ProjectID != p.ID {
					kept = append(kept, n)
				}
			}
			s.notes = kept
		}
	}
	if c.Note != nil {
		s.appendNote(c.Note)
	}
	for i := range c.Audit {
		s.appendAudit(&c.Audit[i])
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
