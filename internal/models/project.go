package models

import (
	"fmt"
	"time"
)

type ProjectType string
type ProjectStatus string
type Priority string
type Area string
type Requestor string
type Assignee string

const (
	TypePreventive ProjectType = "Preventive"
	TypeEmergency  ProjectType = "Emergency"
	TypeBudgeted   ProjectType = "Budgeted"
	TypeExpense    ProjectType = "Expense"
	TypeSafety     ProjectType = "Safety"

	StatusNotStarted       ProjectStatus = "Not Started"
	StatusInProgress       ProjectStatus = "In Progress"
	StatusCompleted        ProjectStatus = "Completed"
	StatusAwaitingApproval ProjectStatus = "Awaiting Approval"
	StatusOnHold           ProjectStatus = "On-Hold"

	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

const (
	AreaGolfCourse    Area = "Golf Course"
	AreaClubhouse     Area = "Clubhouse"
	AreaProShop       Area = "Pro Shop"
	AreaDrivingRange  Area = "Driving Range"
	AreaCartStorage   Area = "Cart/Storage"
	AreaPickleball    Area = "Pickleball Courts"
	AreaHalfway       Area = "Halfway"
	AreaPoolCabana    Area = "Pool/Cabana"
	AreaBar           Area = "Bar"
	AreaKitchenDining Area = "Kitchen/Dining"
)

const (
	RequestorHeadGroundskeeper Requestor = "Head Groundskeeper"
	RequestorFacilityManager   Requestor = "Facility Manager"
	RequestorProShopManager    Requestor = "Pro Shop Manager"
	RequestorGeneralManager    Requestor = "General Manager"
	RequestorMember            Requestor = "Member"
)

const (
	AssigneeTeamA      Assignee = "Maintenance Team A"
	AssigneeTeamB      Assignee = "Maintenance Team B"
	AssigneeExternal   Assignee = "External Contractor"
	AssigneeHVAC       Assignee = "HVAC Contractor"
	AssigneePlumbing   Assignee = "Plumbing Contractor"
	AssigneeElectrical Assignee = "Electrical Contractor"
)

var (
	ProjectTypes = []ProjectType{TypePreventive, TypeEmergency, TypeBudgeted, TypeExpense, TypeSafety}
	Statuses     = []ProjectStatus{StatusNotStarted, StatusInProgress, StatusCompleted, StatusAwaitingApproval, StatusOnHold}
	Priorities   = []Priority{PriorityHigh, PriorityMedium, PriorityLow}
	Areas        = []Area{
		AreaGolfCourse, AreaClubhouse, AreaProShop, AreaDrivingRange, AreaCartStorage,
		AreaPickleball, AreaHalfway, AreaPoolCabana, AreaBar, AreaKitchenDining,
	}
	Requestors = []Requestor{
		RequestorHeadGroundskeeper, RequestorFacilityManager, RequestorProShopManager,
		RequestorGeneralManager, RequestorMember,
	}
	Assignees = []Assignee{
		AssigneeTeamA, AssigneeTeamB, AssigneeExternal, AssigneeHVAC, AssigneePlumbing, AssigneeElectrical,
	}
)

func (t ProjectType) IsValid() bool   { return contains(ProjectTypes, t) }
func (s ProjectStatus) IsValid() bool { return contains(Statuses, s) }
func (p Priority) IsValid() bool      { return contains(Priorities, p) }
func (a Area) IsValid() bool          { return contains(Areas, a) }
func (r Requestor) IsValid() bool     { return contains(Requestors, r) }
func (a Assignee) IsValid() bool      { return contains(Assignees, a) }

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Project is a single maintenance task tracked for the facility.
type Project struct {
	ID  string `gorm:"primaryKey;size:16" json:"id"`
	Seq int    `gorm:"uniqueIndex;not null" json:"-"` // insertion order, also the source of ID

	Name       string        `gorm:"size:255;not null" json:"name"`
	Type       ProjectType   `gorm:"type:varchar(32);not null" json:"type"`
	Area       Area          `gorm:"type:varchar(64);not null" json:"area"`
	Requestor  Requestor     `gorm:"type:varchar(64);not null" json:"requestor"`
	AssignedTo Assignee      `gorm:"type:varchar(64);not null" json:"assignedTo"`
	Priority   Priority      `gorm:"type:varchar(16);not null" json:"priority"`
	Status     ProjectStatus `gorm:"type:varchar(32);not null" json:"status"`

	EstCost    float64 `gorm:"not null;default:0" json:"estCost"`
	ActualCost float64 `gorm:"not null;default:0" json:"actualCost"`
	Progress   int     `gorm:"not null;default:0" json:"progress"`

	CreatedDate time.Time  `json:"createdDate"`
	UpdatedDate time.Time  `json:"updatedDate"`
	DueDate     *time.Time `json:"dueDate,omitempty"`

	Photos []Photo `gorm:"foreignKey:ProjectID" json:"photos"`

	IsDeleted   bool       `gorm:"index;not null;default:false" json:"isDeleted"`
	DeletedDate *time.Time `json:"deletedDate,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Project) Clone() Project {
	out := p
	out.Photos = append([]Photo(nil), p.Photos...)
	if p.DueDate != nil {
		d := *p.DueDate
		out.DueDate = &d
	}
	if p.DeletedDate != nil {
		d := *p.DeletedDate
		out.DeletedDate = &d
	}
	return out
}

// ProjectInput carries the fields accepted when a project is created.
type ProjectInput struct {
	Name       string        `json:"name"`
	Type       ProjectType   `json:"type"`
	Area       Area          `json:"area"`
	Requestor  Requestor     `json:"requestor"`
	AssignedTo Assignee      `json:"assignedTo"`
	Priority   Priority      `json:"priority"`
	Status     ProjectStatus `json:"status"`
	EstCost    float64       `json:"estCost"`
	ActualCost float64       `json:"actualCost"`
	Progress   int           `json:"progress"`
	DueDate    *time.Time    `json:"dueDate,omitempty"`
}

// ProjectPatch is a partial update. Nil fields are left untouched.
// ClearDueDate removes the due date; it is ignored when DueDate is set.
type ProjectPatch struct {
	Name       *string        `json:"name,omitempty"`
	Type       *ProjectType   `json:"type,omitempty"`
	Area       *Area          `json:"area,omitempty"`
	Requestor  *Requestor     `json:"requestor,omitempty"`
	AssignedTo *Assignee      `json:"assignedTo,omitempty"`
	Priority   *Priority      `json:"priority,omitempty"`
	Status     *ProjectStatus `json:"status,omitempty"`
	EstCost    *float64       `json:"estCost,omitempty"`
	ActualCost *float64       `json:"actualCost,omitempty"`
	Progress   *int           `json:"progress,omitempty"`
	DueDate    *time.Time     `json:"dueDate,omitempty"`

	ClearDueDate bool `json:"-"`
}

// ProjectIDFromSeq formats a store sequence number as a project id (PRJ-001).
func ProjectIDFromSeq(seq int) string {
	return fmt.Sprintf("PRJ-%03d", seq)
}
