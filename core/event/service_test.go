package event_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/user"
	inmemdb "github.com/Armandk18/taskmanager/storage/database/inmem"
	testutil "github.com/Armandk18/taskmanager/tests"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	users := inmemdb.NewUserRepository(db)
	svc := event.NewService(inmemdb.NewEventRepository(db), users)

	admin := testutil.CreateUser(t, users, "Admin", "admin@university.edu", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, users, "Teacher", "teacher@university.edu", "", user.RoleTeacher)
	student := testutil.CreateUser(t, users, "Student", "student@university.edu", "", user.RoleStudent)

	exams, err := svc.Create(ctx, admin.Actor(), event.NewEvent{Title: "Exams", StartDate: "2024-06-10", EndDate: "2024-06-14"})
	require.NoError(t, err)
	assert.Equal(t, event.VisibilityPublic, exams.Visibility)
	assert.Equal(t, event.DefaultColor, exams.Color)
	assert.Equal(t, "Admin", exams.CreatedByName)

	revision, err := svc.Create(ctx, student.Actor(), event.NewEvent{
		Title: "Revision", StartDate: "2024-06-01", EndDate: "2024-06-09",
		Visibility: event.VisibilityPublic, Color: "#ff0000",
	})
	require.NoError(t, err)
	assert.Equal(t, event.VisibilityPrivate, revision.Visibility)
	assert.Equal(t, "#ff0000", revision.Color)

	ghost, err := svc.Create(ctx, user.Actor{ID: "ghost", Role: user.RoleTeacher}, event.NewEvent{Title: "Ghost", StartDate: "2024-06-20", EndDate: "2024-06-20"})
	require.NoError(t, err)
	assert.Equal(t, event.DefaultCreatedByName, ghost.CreatedByName)

	lists := []struct {
		name     string
		actor    user.User
		from, to string
		want     []string
	}{
		{name: "admin sees all", actor: admin, want: []string{revision.ID, exams.ID, ghost.ID}},
		{name: "student sees public and own", actor: student, want: []string{revision.ID, exams.ID}},
		{name: "teacher sees public", actor: teacher, want: []string{exams.ID}},
		{name: "window", actor: admin, from: "2024-06-09", to: "2024-06-10", want: []string{revision.ID, exams.ID}},
		{name: "from only", actor: admin, from: "2024-06-15", want: []string{ghost.ID}},
	}
	for _, tt := range lists {
		t.Run(tt.name, func(t *testing.T) {
			events, err := svc.List(ctx, tt.actor.Actor(), tt.from, tt.to)
			require.NoError(t, err)
			got := make([]string, 0, len(events))
			for _, e := range events {
				got = append(got, e.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	public := event.VisibilityPublic
	updated, err := svc.Update(ctx, student.Actor(), revision.ID, event.UpdateEvent{Visibility: &public})
	require.NoError(t, err)
	assert.Equal(t, event.VisibilityPrivate, updated.Visibility)

	empty := ""
	updated, err = svc.Update(ctx, student.Actor(), revision.ID, event.UpdateEvent{Color: &empty})
	require.NoError(t, err)
	assert.Equal(t, event.DefaultColor, updated.Color)

	before := "2024-05-01"
	_, err = svc.Update(ctx, admin.Actor(), exams.ID, event.UpdateEvent{EndDate: &before})
	_, ok := errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok, "got %v", err)

	_, err = svc.Update(ctx, teacher.Actor(), exams.ID, event.UpdateEvent{Title: &empty})
	assert.Equal(t, core.ErrPermissionDenied, err)
	_, err = svc.Update(ctx, teacher.Actor(), "missing", event.UpdateEvent{})
	assert.Equal(t, event.ErrNotFound, err)

	assert.Equal(t, core.ErrPermissionDenied, svc.Delete(ctx, student.Actor(), exams.ID))
	require.NoError(t, svc.Delete(ctx, admin.Actor(), revision.ID))
	assert.Equal(t, event.ErrNotFound, svc.Delete(ctx, admin.Actor(), revision.ID))
}
