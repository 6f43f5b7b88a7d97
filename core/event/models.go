package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Armandk18/taskmanager/core"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"

	DefaultColor         = "#3b82f6"
	dateLayout           = "2006-01-02"
	DefaultCreatedByName = "Utilisateur"
)

func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type Event struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	StartDate     string     `json:"startDate"`           // YYYY-MM-DD
	EndDate       string     `json:"endDate"`             // YYYY-MM-DD
	StartTime     string     `json:"startTime,omitempty"` // HH:MM
	EndTime       string     `json:"endTime,omitempty"`   // HH:MM
	CreatedBy     string     `json:"createdBy"`
	CreatedByName string     `json:"createdByName"`
	Visibility    Visibility `json:"visibility"`
	Color         string     `json:"color"`
	CreatedAt     time.Time  `json:"createdAt"` // UTC
}

type NewEvent struct {
	Title       string     `json:"title" validate:"required,notblank"`
	Description string     `json:"description"`
	StartDate   string     `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string     `json:"endDate" validate:"required,datetime=2006-01-02"`
	StartTime   string     `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime     string     `json:"endTime" validate:"omitempty,datetime=15:04"`
	Visibility  Visibility `json:"visibility" validate:"omitempty,visibility"`
	Color       string     `json:"color" validate:"omitempty,hexcolor"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.StartDate = core.CleanString(ne.StartDate)
	ne.EndDate = core.CleanString(ne.EndDate)
	ne.StartTime = core.CleanString(ne.StartTime)
	ne.EndTime = core.CleanString(ne.EndTime)
	ne.Visibility = Visibility(core.CleanString(string(ne.Visibility), true /* lower */))
	ne.Color = core.CleanString(ne.Color)
	return validate.Struct(ne)
}

type UpdateEvent struct {
	Title       *string     `json:"title" validate:"omitempty,notblank"`
	Description *string     `json:"description"`
	StartDate   *string     `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string     `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime   *string     `json:"startTime" validate:"omitempty,clock"`
	EndTime     *string     `json:"endTime" validate:"omitempty,clock"`
	Visibility  *Visibility `json:"visibility" validate:"omitempty,visibility"`
	Color       *string     `json:"color" validate:"omitempty,hexcolor"`
}

func (ue *UpdateEvent) Validate(validate *validator.Validate) error {
	for _, s := range []*string{ue.Title, ue.Description, ue.StartDate, ue.EndDate, ue.StartTime, ue.EndTime, ue.Color} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if ue.Visibility != nil {
		*ue.Visibility = Visibility(core.CleanString(string(*ue.Visibility), true /* lower */))
	}
	// an empty color resets it
	if ue.Color != nil && *ue.Color == "" {
		*ue.Color = DefaultColor
	}
	return validate.Struct(ue)
}

// Apply sets the non-nil fields of `ue` on `e`. An empty time clears it.
func (ue UpdateEvent) Apply(e *Event) {
	if ue.Title != nil {
		e.Title = *ue.Title
	}
	if ue.Description != nil {
		e.Description = *ue.Description
	}
	if ue.StartDate != nil {
		e.StartDate = *ue.StartDate
	}
	if ue.EndDate != nil {
		e.EndDate = *ue.EndDate
	}
	if ue.StartTime != nil {
		e.StartTime = *ue.StartTime
	}
	if ue.EndTime != nil {
		e.EndTime = *ue.EndTime
	}
	if ue.Visibility != nil {
		e.Visibility = *ue.Visibility
	}
	if ue.Color != nil {
		e.Color = *ue.Color
	}
}

// QueryFilter narrows down a list of Events. Zero value matches all.
type QueryFilter struct {
	// VisibleTo keeps public events and the private events created by that user.
	VisibleTo string
	// From & To keep events whose [StartDate, EndDate] overlaps the window, bounds included.
	From string
	To   string
}

func (qf *QueryFilter) Matches(e Event) bool {
	if qf == nil {
		return true
	}
	if qf.VisibleTo != "" && e.Visibility != VisibilityPublic && e.CreatedBy != qf.VisibleTo {
		return false
	}
	if qf.To != "" && e.StartDate > qf.To {
		return false
	}
	if qf.From != "" && e.EndDate < qf.From {
		return false
	}
	return true
}

// Less orders events soonest first.
func Less(a, b Event) bool {
	if a.StartDate != b.StartDate {
		return a.StartDate < b.StartDate
	}
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
