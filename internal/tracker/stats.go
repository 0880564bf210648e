package tracker

import (
	"context"
	"math"

	"maint-tracker/internal/models"
)

// BudgetScope selects the projects that feed the budget variance.
type BudgetScope string

const (
	// BudgetActive counts only In Progress and Completed projects.
	BudgetActive BudgetScope = "active"
	BudgetAll    BudgetScope = "all"
)

type BudgetStatus string

const (
	BudgetOnTrack BudgetStatus = "On Track"
	BudgetOver    BudgetStatus = "Over Budget"
	BudgetUnder   BudgetStatus = "Under Budget"
)

// budgetTolerance is the percent variance still considered on track.
const budgetTolerance = 5.0

type Budget struct {
	Scope           BudgetScope  `json:"scope"`
	ProjectCount    int          `json:"projectCount"`
	TotalEstimated  float64      `json:"totalEstimated"`
	TotalActual     float64      `json:"totalActual"`
	Variance        float64      `json:"variance"`
	PercentVariance float64      `json:"percentVariance"`
	Status          BudgetStatus `json:"status"`
}

type Stats struct {
	Total      int                          `json:"total"`
	InProgress int                          `json:"inProgress"`
	Completed  int                          `json:"completed"`
	ByStatus   map[models.ProjectStatus]int `json:"byStatus"`
	ByPriority map[models.Priority]int      `json:"byPriority"`
	Budget     Budget                       `json:"budget"`
}

// DatabaseStats mirrors the record counters shown on the dashboard.
type DatabaseStats struct {
	Projects     int `json:"projects"`
	Notes        int `json:"notes"`
	AuditEntries int `json:"auditEntries"`
}

type Summary struct {
	Stats
	Database DatabaseStats `json:"database"`
}

func inBudgetScope(p models.Project, scope BudgetScope) bool {
	if scope == BudgetAll {
		return true
	}
	return p.Status == models.StatusInProgress || p.Status == models.StatusCompleted
}

// ClassifyBudget maps a percent variance to a budget status.
func ClassifyBudget(percent float64) BudgetStatus {
	switch {
	case math.Abs(percent) <= budgetTolerance:
		return BudgetOnTrack
	case percent > budgetTolerance:
		return BudgetOver
	default:
		return BudgetUnder
	}
}

// ComputeBudget sums costs over the projects in scope. The percent variance
// is 0 when nothing was estimated.
func ComputeBudget(projects []models.Project, scope BudgetScope) Budget {
	b := Budget{Scope: scope}
	for _, p := range projects {
		if !inBudgetScope(p, scope) {
			continue
		}
		b.ProjectCount++
		b.TotalEstimated += p.EstCost
		b.TotalActual += p.ActualCost
	}
	b.Variance = b.TotalActual - b.TotalEstimated
	if b.TotalEstimated != 0 {
		b.PercentVariance = b.Variance / b.TotalEstimated * 100
	}
	b.Status = ClassifyBudget(b.PercentVariance)
	return b
}

// ComputeStats derives the dashboard counters from projects. It has no side effects.
func ComputeStats(projects []models.Project, scope BudgetScope) Stats {
	st := Stats{
		Total:      len(projects),
		ByStatus:   make(map[models.ProjectStatus]int, len(models.Statuses)),
		ByPriority: make(map[models.Priority]int, len(models.Priorities)),
	}
	for _, status := range models.Statuses {
		st.ByStatus[status] = 0
	}
	for _, priority := range models.Priorities {
		st.ByPriority[priority] = 0
	}

	for _, p := range projects {
		st.ByStatus[p.Status]++
		st.ByPriority[p.Priority]++
	}
	st.InProgress = st.ByStatus[models.StatusInProgress]
	st.Completed = st.ByStatus[models.StatusCompleted]
	st.Budget = ComputeBudget(projects, scope)
	return st
}

// Summary computes statistics over the current projects plus record counters.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	projects, err := s.ListProjects(ctx, Filter{})
	if err != nil {
		return Summary{}, err
	}
	notes, err := s.store.ListNotes(ctx, "")
	if err != nil {
		return Summary{}, storageErr("count notes", err)
	}
	audit, err := s.store.ListAudit(ctx, "")
	if err != nil {
		return Summary{}, storageErr("count audit entries", err)
	}

	return Summary{
		Stats: ComputeStats(projects, s.budgetScope),
		Database: DatabaseStats{
			Projects:     len(projects),
			Notes:        len(notes),
			AuditEntries: len(audit),
		},
	}, nil
}
