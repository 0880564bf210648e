// Package tracker implements the maintenance-project operations: projects,
// photos, notes, the audit trail, derived statistics and exports.
//
// Every mutation is recorded in the audit log. Projects are soft-deleted so
// their history stays readable after removal.
package tracker

import (
	"context"
	"errors"
	"time"

	"maint-tracker/internal/database"
	"maint-tracker/internal/models"
)

// DefaultActor is recorded as the user of an audit entry when the caller
// does not name one.
const DefaultActor = "Current User"

type Service struct {
	store   database.Store
	now     func() time.Time
	started time.Time

	budgetScope BudgetScope
	progress    ProgressFormat
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithBudgetScope(scope BudgetScope) Option {
	return func(s *Service) { s.budgetScope = scope }
}

func WithProgressFormat(format ProgressFormat) Option {
	return func(s *Service) { s.progress = format }
}

func New(store database.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		budgetScope: BudgetActive,
		progress:    ProgressPlain,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()
	return s
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return DefaultActor
	}
	return actor
}

// activeProject loads a project that exists and is not soft-deleted.
func (s *Service) activeProject(ctx context.Context, id string) (models.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return models.Project{}, &NotFoundError{Kind: "project", ID: id}
	}
	if err != nil {
		return models.Project{}, storageErr("get project", err)
	}
	if p.IsDeleted {
		return models.Project{}, &NotFoundError{Kind: "project", ID: id}
	}
	return p, nil
}
