package database

import (
	"context"
	"fmt"
	"time"

	"maint-tracker/internal/logutils"
	"maint-tracker/internal/models"
)

func seedTime(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func seedTimePtr(s string) *time.Time {
	t := seedTime(s)
	return &t
}

// seedProjects are the facility's starter projects, in id order.
func seedProjects() []models.Project {
	return []models.Project{
		{
			Name:        "Greens Aeration - Holes 1-9",
			Type:        models.TypePreventive,
			Area:        models.AreaGolfCourse,
			Requestor:   models.RequestorHeadGroundskeeper,
			AssignedTo:  models.AssigneeTeamA,
			Priority:    models.PriorityHigh,
			Status:      models.StatusInProgress,
			EstCost:     2500,
			ActualCost:  2200,
			Progress:    75,
			CreatedDate: seedTime("2024-06-01T09:00:00"),
			UpdatedDate: seedTime("2024-06-01T09:00:00"),
			DueDate:     seedTimePtr("2024-06-15T17:00:00"),
		},
		{
			Name:        "Clubhouse HVAC Repair",
			Type:        models.TypeEmergency,
			Area:        models.AreaClubhouse,
			Requestor:   models.RequestorFacilityManager,
			AssignedTo:  models.AssigneeHVAC,
			Priority:    models.PriorityHigh,
			Status:      models.StatusCompleted,
			EstCost:     3500,
			ActualCost:  3750,
			Progress:    100,
			CreatedDate: seedTime("2024-06-05T14:30:00"),
			UpdatedDate: seedTime("2024-06-10T16:00:00"),
			DueDate:     seedTimePtr("2024-06-10T16:00:00"),
		},
		{
			Name:        "Cart Path Resurfacing",
			Type:        models.TypeBudgeted,
			Area:        models.AreaGolfCourse,
			Requestor:   models.RequestorProShopManager,
			AssignedTo:  models.AssigneeExternal,
			Priority:    models.PriorityMedium,
			Status:      models.StatusAwaitingApproval,
			EstCost:     15000,
			ActualCost:  0,
			Progress:    0,
			CreatedDate: seedTime("2024-06-03T10:15:00"),
			UpdatedDate: seedTime("2024-06-03T10:15:00"),
			DueDate:     seedTimePtr("2024-07-01T17:00:00"),
		},
	}
}

// seedNotes reference projects by their position in seedProjects.
var seedNotes = []struct {
	project   int
	text      string
	author    string
	timestamp string
}{
	{0, "Started aeration process on holes 1-3. Weather conditions are optimal.", "Head Groundskeeper", "2024-06-08T09:30:00"},
	{0, "Completed holes 4-6. Some areas need additional seed treatment.", "Maintenance Team A", "2024-06-09T14:15:00"},
	{1, "HVAC system fully operational. Temperature control restored.", "HVAC Contractor", "2024-06-10T16:45:00"},
}

// Seed fills an empty store with the starter projects and notes. A store that
// already holds projects is left alone. Seeding writes no audit entries.
func Seed(ctx context.Context, store Store) error {
	existing, err := store.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing projects: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	ids := make([]string, 0, 3)
	for _, p := range seedProjects() {
		seq, err := store.NextProjectSeq(ctx)
		if err != nil {
			return err
		}
		p.Seq = seq
		p.ID = models.ProjectIDFromSeq(seq)
		p.Photos = []models.Photo{}
		if err := store.CreateProject(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed project %s: %w", p.Name, err)
		}
		ids = append(ids, p.ID)
	}

	for _, sn := range seedNotes {
		n := models.Note{
			ProjectID: ids[sn.project],
			Text:      sn.text,
			Author:    sn.author,
			Timestamp: seedTime(sn.timestamp),
		}
		if err := store.CreateNote(ctx, &n); err != nil {
			return fmt.Errorf("failed to seed note: %w", err)
		}
	}

	logutils.Log.WithField("projects", len(ids)).Info("seeded store with starter data")
	return nil
}
