package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

// BroadcastStudentID is the NewTask.StudentID value targeting every current student.
const BroadcastStudentID = "all"

type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DueDate       string    `json:"dueDate"` // YYYY-MM-DD
	Completed     bool      `json:"completed"`
	StudentID     string    `json:"studentId"`
	CreatedByID   string    `json:"createdById"`
	CreatedByRole user.Role `json:"createdByRole"`
	Priority      string    `json:"priority"`
	SharedWith    []string  `json:"sharedWith"`
	CreatedAt     time.Time `json:"createdAt"` // UTC
}

func (t Task) IsSharedWith(userID string) bool {
	return core.ContainsString(t.SharedWith, userID)
}

// NewTask contains information needed to create one Task, or one per student when broadcast.
type NewTask struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Priority    string `json:"priority" validate:"omitempty,priority"`
	StudentID   string `json:"studentId"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.DueDate = core.CleanString(nt.DueDate)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	nt.StudentID = core.CleanString(nt.StudentID)
	return validate.Struct(nt)
}

func (nt NewTask) IsBroadcast() bool { return nt.StudentID == BroadcastStudentID }

// UpdateTask defines what information may be provided to modify an existing Task.
// Ownership fields are immutable.
type UpdateTask struct {
	Title       *string `json:"title" validate:"omitempty,notblank"`
	Description *string `json:"description" validate:"omitempty,notblank"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    *string `json:"priority" validate:"omitempty,priority"`
	Completed   *bool   `json:"completed"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	for _, s := range []*string{ut.Title, ut.Description, ut.DueDate} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if ut.Priority != nil {
		*ut.Priority = core.CleanString(*ut.Priority, true /* lower */)
	}
	return validate.Struct(ut)
}

// Apply sets the non-nil fields of `ut` on `t`.
func (ut UpdateTask) Apply(t *Task) {
	if ut.Title != nil {
		t.Title = *ut.Title
	}
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	if ut.DueDate != nil {
		t.DueDate = *ut.DueDate
	}
	if ut.Priority != nil {
		t.Priority = *ut.Priority
	}
	if ut.Completed != nil {
		t.Completed = *ut.Completed
	}
}

// QueryFilter narrows down a list of Tasks. Non-empty fields are AND-ed; zero value matches all.
type QueryFilter struct {
	CreatedByID string
	// AssignedTo matches tasks owned by, or shared with, the given student.
	AssignedTo string
}

// Less orders tasks by due date, then creation time.
func Less(a, b Task) bool {
	if a.DueDate != b.DueDate {
		return a.DueDate < b.DueDate
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
