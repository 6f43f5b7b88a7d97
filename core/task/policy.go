package task

import "github.com/Armandk18/taskmanager/core/user"

// ReadFilter returns the filter selecting the tasks `actor` may list.
func ReadFilter(actor user.Actor) *QueryFilter {
	switch actor.Role {
	case user.RoleAdmin:
		return &QueryFilter{}
	case user.RoleTeacher:
		return &QueryFilter{CreatedByID: actor.ID}
	default:
		return &QueryFilter{AssignedTo: actor.ID}
	}
}

// Matches reports whether `t` is selected by the filter.
func (qf *QueryFilter) Matches(t Task) bool {
	if qf == nil {
		return true
	}
	if qf.CreatedByID != "" && t.CreatedByID != qf.CreatedByID {
		return false
	}
	if qf.AssignedTo != "" && t.StudentID != qf.AssignedTo && !t.IsSharedWith(qf.AssignedTo) {
		return false
	}
	return true
}

func CanRead(actor user.Actor, t Task) bool {
	return actor.IsAdmin() ||
		t.CreatedByID == actor.ID ||
		t.StudentID == actor.ID ||
		t.IsSharedWith(actor.ID)
}

// CanMutate covers completion toggling, edits and deletion.
// Students a task is merely shared with get read access only.
func CanMutate(actor user.Actor, t Task) bool {
	switch actor.Role {
	case user.RoleAdmin:
		return true
	case user.RoleTeacher:
		return t.CreatedByID == actor.ID
	case user.RoleStudent:
		return t.StudentID == actor.ID || t.CreatedByID == actor.ID
	}
	return false
}

// CanShare covers adding to and removing from the share list.
func CanShare(actor user.Actor, t Task) bool {
	if !actor.IsStaff() {
		return false
	}
	return actor.IsAdmin() || t.CreatedByID == actor.ID
}
