package tracker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"maint-tracker/internal/models"
)

// ProgressFormat selects how progress is written to CSV.
type ProgressFormat string

const (
	ProgressPlain   ProgressFormat = "plain"   // 75
	ProgressPercent ProgressFormat = "percent" // 75%
)

const CSVHeader = "Project ID,Name,Type,Area,Requestor,Assigned To,Priority,Status,Est Cost,Actual Cost,Progress,Created Date,Due Date"

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportCSV renders projects as CSV, one row per project under CSVHeader.
// Free-text columns and dates are always quoted.
func ExportCSV(projects []models.Project, format ProgressFormat) string {
	lines := make([]string, 0, len(projects)+1)
	lines = append(lines, CSVHeader)

	for _, p := range projects {
		progress := strconv.Itoa(p.Progress)
		if format == ProgressPercent {
			progress += "%"
		}
		due := ""
		if p.DueDate != nil {
			due = p.DueDate.UTC().Format(time.RFC3339)
		}

		lines = append(lines, strings.Join([]string{
			p.ID,
			quote(p.Name),
			string(p.Type),
			string(p.Area),
			quote(string(p.Requestor)),
			quote(string(p.AssignedTo)),
			string(p.Priority),
			string(p.Status),
			formatCost(p.EstCost),
			formatCost(p.ActualCost),
			progress,
			quote(p.CreatedDate.UTC().Format(time.RFC3339)),
			quote(due),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// ExportCSV exports the projects matching f using the configured progress format.
func (s *Service) ExportCSV(ctx context.Context, f Filter) (string, error) {
	projects, err := s.ListProjects(ctx, f)
	if err != nil {
		return "", err
	}
	return ExportCSV(projects, s.progress), nil
}
