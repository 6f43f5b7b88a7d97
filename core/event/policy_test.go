package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Armandk18/taskmanager/core/user"
)

var (
	admin   = user.Actor{ID: "admin", Role: user.RoleAdmin}
	teacher = user.Actor{ID: "teacher", Role: user.RoleTeacher}
	student = user.Actor{ID: "student", Role: user.RoleStudent}
	other   = user.Actor{ID: "other", Role: user.RoleStudent}
)

func TestEffectiveVisibility(t *testing.T) {
	tests := []struct {
		name      string
		actor     user.Actor
		requested Visibility
		want      Visibility
	}{
		{name: "student public forced private", actor: student, requested: VisibilityPublic, want: VisibilityPrivate},
		{name: "student default", actor: student, want: VisibilityPrivate},
		{name: "teacher public forced private", actor: teacher, requested: VisibilityPublic, want: VisibilityPrivate},
		{name: "admin public", actor: admin, requested: VisibilityPublic, want: VisibilityPublic},
		{name: "admin private", actor: admin, requested: VisibilityPrivate, want: VisibilityPrivate},
		{name: "admin default", actor: admin, want: VisibilityPublic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveVisibility(tt.actor, tt.requested))
		})
	}
}

func TestCanMutate(t *testing.T) {
	e := Event{ID: "e", CreatedBy: student.ID, Visibility: VisibilityPrivate}
	assert.True(t, CanMutate(admin, e))
	assert.True(t, CanMutate(student, e))
	assert.False(t, CanMutate(other, e))
	assert.False(t, CanMutate(teacher, e))
}

func TestReadFilter(t *testing.T) {
	events := []Event{
		{ID: "public", CreatedBy: admin.ID, Visibility: VisibilityPublic, StartDate: "2024-05-01", EndDate: "2024-05-03"},
		{ID: "admin-private", CreatedBy: admin.ID, Visibility: VisibilityPrivate, StartDate: "2024-05-10", EndDate: "2024-05-10"},
		{ID: "student-private", CreatedBy: student.ID, Visibility: VisibilityPrivate, StartDate: "2024-04-28", EndDate: "2024-05-01"},
		{ID: "other-private", CreatedBy: other.ID, Visibility: VisibilityPrivate, StartDate: "2024-05-04", EndDate: "2024-05-06"},
	}
	tests := []struct {
		name     string
		actor    user.Actor
		from, to string
		want     []string
	}{
		{name: "admin sees all", actor: admin, want: []string{"public", "admin-private", "student-private", "other-private"}},
		{name: "student sees public and own", actor: student, want: []string{"public", "student-private"}},
		{name: "teacher sees public only", actor: teacher, want: []string{"public"}},
		{name: "end boundary included", actor: admin, from: "2024-05-03", to: "2024-05-10", want: []string{"public", "admin-private", "other-private"}},
		{name: "start boundary included", actor: admin, from: "2024-04-20", to: "2024-04-28", want: []string{"student-private"}},
		{name: "window inside event", actor: admin, from: "2024-05-02", to: "2024-05-02", want: []string{"public"}},
		{name: "no overlap", actor: admin, from: "2024-06-01", to: "2024-06-30", want: []string{}},
		{name: "range with visibility", actor: student, from: "2024-05-01", to: "2024-05-31", want: []string{"public", "student-private"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := ReadFilter(tt.actor, tt.from, tt.to)
			got := make([]string, 0)
			for _, e := range events {
				if filter.Matches(e) {
					got = append(got, e.ID)
				}
				assert.Equal(t, Visible(tt.actor, e), ReadFilter(tt.actor, "", "").Matches(e))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
