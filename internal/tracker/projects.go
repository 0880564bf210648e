package tracker

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"maint-tracker/internal/database"
	"maint-tracker/internal/logutils"
	"maint-tracker/internal/models"
)

// Filter narrows ListProjects. The zero Filter matches every project.
type Filter struct {
	// Query is a case-insensitive substring matched against the id and the
	// descriptive fields of a project.
	Query    string
	Status   models.ProjectStatus
	Priority models.Priority
	Type     models.ProjectType
	Area     models.Area
}

func (f Filter) Match(p models.Project) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Priority != "" && p.Priority != f.Priority {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Area != "" && p.Area != f.Area {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{
		p.ID, p.Name, string(p.Type), string(p.Area), string(p.Requestor),
		string(p.AssignedTo), string(p.Priority), string(p.Status),
	} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// ListProjects returns the non-deleted projects matching f, in creation order.
func (s *Service) ListProjects(ctx context.Context, f Filter) ([]models.Project, error) {
	all, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, storageErr("list projects", err)
	}

	out := make([]models.Project, 0, len(all))
	for _, p := range all {
		if p.IsDeleted || !f.Match(p) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (models.Project, error) {
	return s.activeProject(ctx, id)
}

func validateInput(in models.ProjectInput) error {
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"type", string(in.Type)},
		{"area", string(in.Area)},
		{"requestor", string(in.Requestor)},
		{"assignedTo", string(in.AssignedTo)},
		{"priority", string(in.Priority)},
		{"status", string(in.Status)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "Missing required field: %s", r.field)
		}
	}

	return validateFields(fieldValues{
		typ:        &in.Type,
		area:       &in.Area,
		requestor:  &in.Requestor,
		assignedTo: &in.AssignedTo,
		priority:   &in.Priority,
		status:     &in.Status,
		estCost:    &in.EstCost,
		actualCost: &in.ActualCost,
		progress:   &in.Progress,
	})
}

// fieldValues holds the optional values shared by create and patch validation.
type fieldValues struct {
	name       *string
	typ        *models.ProjectType
	area       *models.Area
	requestor  *models.Requestor
	assignedTo *models.Assignee
	priority   *models.Priority
	status     *models.ProjectStatus
	estCost    *float64
	actualCost *float64
	progress   *int
}

func validateFields(v fieldValues) error {
	if v.name != nil && strings.TrimSpace(*v.name) == "" {
		return invalid("name", "Field name cannot be empty")
	}
	if v.typ != nil && !v.typ.IsValid() {
		return invalid("type", "Invalid type: %s", *v.typ)
	}
	if v.area != nil && !v.area.IsValid() {
		return invalid("area", "Invalid area: %s", *v.area)
	}
	if v.requestor != nil && !v.requestor.IsValid() {
		return invalid("requestor", "Invalid requestor: %s", *v.requestor)
	}
	if v.assignedTo != nil && !v.assignedTo.IsValid() {
		return invalid("assignedTo", "Invalid assignedTo: %s", *v.assignedTo)
	}
	if v.priority != nil && !v.priority.IsValid() {
		return invalid("priority", "Invalid priority: %s", *v.priority)
	}
	if v.status != nil && !v.status.IsValid() {
		return invalid("status", "Invalid status: %s", *v.status)
	}
	if v.estCost != nil && *v.estCost < 0 {
		return invalid("estCost", "Estimated cost cannot be negative")
	}
	if v.actualCost != nil && *v.actualCost < 0 {
		return invalid("actualCost", "Actual cost cannot be negative")
	}
	if v.progress != nil && (*v.progress < 0 || *v.progress > 100) {
		return invalid("progress", "Progress must be between 0 and 100")
	}
	return nil
}

func validatePatch(p models.ProjectPatch) error {
	return validateFields(fieldValues{
		name:       p.Name,
		typ:        p.Type,
		area:       p.Area,
		requestor:  p.Requestor,
		assignedTo: p.AssignedTo,
		priority:   p.Priority,
		status:     p.Status,
		estCost:    p.EstCost,
		actualCost: p.ActualCost,
		progress:   p.Progress,
	})
}

// CreateProject validates in, assigns the next PRJ-NNN id and records a
// CREATE entry holding the full new record.
func (s *Service) CreateProject(ctx context.Context, actor string, in models.ProjectInput) (models.Project, error) {
	if err := validateInput(in); err != nil {
		return models.Project{}, err
	}

	seq, err := s.store.NextProjectSeq(ctx)
	if err != nil {
		return models.Project{}, storageErr("assign project id", err)
	}

	now := s.now()
	p := models.Project{
		ID:          models.ProjectIDFromSeq(seq),
		Seq:         seq,
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		Area:        in.Area,
		Requestor:   in.Requestor,
		AssignedTo:  in.AssignedTo,
		Priority:    in.Priority,
		Status:      in.Status,
		EstCost:     in.EstCost,
		ActualCost:  in.ActualCost,
		Progress:    in.Progress,
		CreatedDate: now,
		UpdatedDate: now,
		DueDate:     in.DueDate,
		Photos:      []models.Photo{},
	}
	snapshot, err := json.Marshal(p)
	if err != nil {
		return models.Project{}, storageErr("encode project", err)
	}
	record := string(snapshot)
	err = s.commit(ctx, "create project", database.Change{
		Project: &p,
		Create:  true,
		Audit:   []models.AuditEntry{s.entry(p.ID, models.ActionCreate, nil, nil, &record, actor)},
	})
	if err != nil {
		return models.Project{}, err
	}

	logutils.Log.WithFields(logutils.Fields{"project": p.ID, "user": actorOrDefault(actor)}).Info("project created")
	return p, nil
}

type fieldChange struct {
	field    string
	oldValue *string
	newValue *string
}

func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func strPtr(s string) *string {
	return &s
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// applyPatch merges patch into p and returns the fields whose string form changed.
func applyPatch(p *models.Project, patch models.ProjectPatch) []fieldChange {
	var changes []fieldChange
	track := func(field string, oldValue, newValue *string) {
		if valueOrEmpty(oldValue) != valueOrEmpty(newValue) {
			changes = append(changes, fieldChange{field: field, oldValue: oldValue, newValue: newValue})
		}
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		track("name", strPtr(p.Name), strPtr(name))
		p.Name = name
	}
	if patch.Type != nil {
		track("type", strPtr(string(p.Type)), strPtr(string(*patch.Type)))
		p.Type = *patch.Type
	}
	if patch.Area != nil {
		track("area", strPtr(string(p.Area)), strPtr(string(*patch.Area)))
		p.Area = *patch.Area
	}
	if patch.Requestor != nil {
		track("requestor", strPtr(string(p.Requestor)), strPtr(string(*patch.Requestor)))
		p.Requestor = *patch.Requestor
	}
	if patch.AssignedTo != nil {
		track("assignedTo", strPtr(string(p.AssignedTo)), strPtr(string(*patch.AssignedTo)))
		p.AssignedTo = *patch.AssignedTo
	}
	if patch.Priority != nil {
		track("priority", strPtr(string(p.Priority)), strPtr(string(*patch.Priority)))
		p.Priority = *patch.Priority
	}
	if patch.Status != nil {
		track("status", strPtr(string(p.Status)), strPtr(string(*patch.Status)))
		p.Status = *patch.Status
	}
	if patch.EstCost != nil {
		track("estCost", strPtr(formatCost(p.EstCost)), strPtr(formatCost(*patch.EstCost)))
		p.EstCost = *patch.EstCost
	}
	if patch.ActualCost != nil {
		track("actualCost", strPtr(formatCost(p.ActualCost)), strPtr(formatCost(*patch.ActualCost)))
		p.ActualCost = *patch.ActualCost
	}
	if patch.Progress != nil {
		track("progress", strPtr(strconv.Itoa(p.Progress)), strPtr(strconv.Itoa(*patch.Progress)))
		p.Progress = *patch.Progress
	}
	switch {
	case patch.DueDate != nil:
		due := *patch.DueDate
		track("dueDate", formatDate(p.DueDate), formatDate(&due))
		p.DueDate = &due
	case patch.ClearDueDate:
		track("dueDate", formatDate(p.DueDate), nil)
		p.DueDate = nil
	}
	return changes
}

// UpdateProject applies patch to the project and records one UPDATE entry per
// changed field. Nothing is written when the patch is invalid.
func (s *Service) UpdateProject(ctx context.Context, actor, id string, patch models.ProjectPatch) (models.Project, error) {
	p, err := s.activeProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if err := validatePatch(patch); err != nil {
		return models.Project{}, err
	}

	changes := applyPatch(&p, patch)
	p.UpdatedDate = s.now()

	entries := make([]models.AuditEntry, 0, len(changes))
	for _, c := range changes {
		field := c.field
		entries = append(entries, s.entry(p.ID, models.ActionUpdate, &field, c.oldValue, c.newValue, actor))
	}
	if err := s.commit(ctx, "update project", database.Change{Project: &p, Audit: entries}); err != nil {
		return models.Project{}, err
	}

	logutils.Log.WithFields(logutils.Fields{"project": p.ID, "changes": len(changes)}).Info("project updated")
	return p, nil
}

// DeleteProject soft-deletes the project and removes its notes and photos.
// The audit trail is kept.
func (s *Service) DeleteProject(ctx context.Context, actor, id string) error {
	p, err := s.activeProject(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	p.IsDeleted = true
	p.DeletedDate = &now
	p.UpdatedDate = now
	p.Photos = []models.Photo{}
	err = s.commit(ctx, "delete project", database.Change{
		Project:     &p,
		DeleteNotes: true,
		Audit:       []models.AuditEntry{s.entry(p.ID, models.ActionDelete, nil, nil, nil, actor)},
	})
	if err != nil {
		return err
	}

	logutils.Log.WithField("project", p.ID).Info("project soft deleted")
	return nil
}
