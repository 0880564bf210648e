package tracker

import (
	"context"
	"strings"
	"testing"
	"time"

	"maint-tracker/internal/models"
)

func TestExportCSVEmpty(t *testing.T) {
	if got := ExportCSV(nil, ProgressPlain); got != CSVHeader {
		t.Fatalf("got %q, want header only", got)
	}
}

func TestExportCSVRows(t *testing.T) {
	due := time.Date(2024, 6, 15, 17, 0, 0, 0, time.UTC)
	p := models.Project{
		ID:          "PRJ-001",
		Name:        `Greens "Aeration", holes 1-9`,
		Type:        models.TypePreventive,
		Area:        models.AreaGolfCourse,
		Requestor:   models.RequestorHeadGroundskeeper,
		AssignedTo:  models.AssigneeTeamA,
		Priority:    models.PriorityHigh,
		Status:      models.StatusInProgress,
		EstCost:     2500,
		ActualCost:  2200.5,
		Progress:    75,
		CreatedDate: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		DueDate:     &due,
	}
	noDue := p
	noDue.ID = "PRJ-002"
	noDue.Name = "Plain"
	noDue.DueDate = nil

	plain := ExportCSV([]models.Project{p, noDue}, ProgressPlain)
	lines := strings.Split(plain, "\n")
	if len(lines) != 3 || lines[0] != CSVHeader {
		t.Fatalf("unexpected layout: %q", plain)
	}
	want := `PRJ-001,"Greens ""Aeration"", holes 1-9",Preventive,Golf Course,"Head Groundskeeper","Maintenance Team A",High,In Progress,2500,2200.5,75,"2024-06-01T09:00:00Z","2024-06-15T17:00:00Z"`
	if lines[1] != want {
		t.Fatalf("row mismatch\n got: %s\nwant: %s", lines[1], want)
	}
	if !strings.HasSuffix(lines[2], `,75,"2024-06-01T09:00:00Z",""`) {
		t.Fatalf("missing due date should export as empty quotes: %s", lines[2])
	}

	percent := ExportCSV([]models.Project{p}, ProgressPercent)
	if !strings.Contains(percent, ",75%,") {
		t.Fatalf("percent mode should suffix progress: %s", percent)
	}
}

func TestServiceExportCSVSkipsDeleted(t *testing.T) {
	svc, _ := newTestService(t, WithProgressFormat(ProgressPercent))
	ctx := context.Background()
	mustCreate(t, svc, "Keep")
	gone := mustCreate(t, svc, "Gone")
	if err := svc.DeleteProject(ctx, "", gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	out, err := svc.ExportCSV(ctx, Filter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "PRJ-001,") || !strings.Contains(lines[1], ",40%,") {
		t.Fatalf("unexpected export: %q", out)
	}
}
