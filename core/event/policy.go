package event

import "github.com/Armandk18/taskmanager/core/user"

// EffectiveVisibility returns the visibility an event created or edited by `actor` gets.
// Only admins may publish; everybody else is forced to private.
func EffectiveVisibility(actor user.Actor, requested Visibility) Visibility {
	if !actor.IsAdmin() {
		return VisibilityPrivate
	}
	if requested == "" {
		return VisibilityPublic
	}
	return requested
}

func CanMutate(actor user.Actor, e Event) bool {
	return actor.IsAdmin() || e.CreatedBy == actor.ID
}

func Visible(actor user.Actor, e Event) bool {
	return actor.IsAdmin() || e.Visibility == VisibilityPublic || e.CreatedBy == actor.ID
}

// ReadFilter returns the filter selecting the events `actor` may list, optionally
// restricted to the [from, to] window.
func ReadFilter(actor user.Actor, from, to string) *QueryFilter {
	qf := &QueryFilter{From: from, To: to}
	if !actor.IsAdmin() {
		qf.VisibleTo = actor.ID
	}
	return qf
}
