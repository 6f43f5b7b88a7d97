package announcement_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/user"
	inmemdb "github.com/Armandk18/taskmanager/storage/database/inmem"
	testutil "github.com/Armandk18/taskmanager/tests"
)

func TestNewAnnouncement_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	tests := []struct {
		name    string
		na      announcement.NewAnnouncement
		wantErr bool
	}{
		{name: "valid", na: announcement.NewAnnouncement{Title: " Exams ", Content: "Room 12", Priority: "HIGH"}},
		{name: "no priority", na: announcement.NewAnnouncement{Title: "Exams", Content: "Room 12"}},
		{name: "blank title", na: announcement.NewAnnouncement{Title: "   ", Content: "Room 12"}, wantErr: true},
		{name: "missing content", na: announcement.NewAnnouncement{Title: "Exams"}, wantErr: true},
		{name: "bad priority", na: announcement.NewAnnouncement{Title: "Exams", Content: "x", Priority: "urgent"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.na.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	users := inmemdb.NewUserRepository(db)
	svc := announcement.NewService(inmemdb.NewAnnouncementRepository(db), users)

	admin := testutil.CreateUser(t, users, "Admin", "admin@university.edu", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, users, "Teacher", "teacher@university.edu", "", user.RoleTeacher)

	a, err := svc.Create(ctx, admin.Actor(), announcement.NewAnnouncement{Title: "Exams", Content: "Room 12"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", a.AuthorName)
	assert.Equal(t, admin.ID, a.AuthorID)
	assert.Equal(t, core.PriorityMedium, a.Priority)

	b, err := svc.Create(ctx, user.Actor{ID: "gone", Role: user.RoleAdmin}, announcement.NewAnnouncement{Title: "Holidays", Content: "Soon", Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, announcement.DefaultAuthorName, b.AuthorName)

	_, err = svc.Create(ctx, teacher.Actor(), announcement.NewAnnouncement{Title: "x", Content: "y"})
	assert.Equal(t, core.ErrPermissionDenied, err)

	anns, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, anns, 2)
	assert.False(t, anns[0].CreatedAt.Before(anns[1].CreatedAt))

	content := "Room 14"
	updated, err := svc.Update(ctx, admin.Actor(), b.ID, announcement.UpdateAnnouncement{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "Holidays", updated.Title)
	assert.Equal(t, "Room 14", updated.Content)

	_, err = svc.Update(ctx, teacher.Actor(), b.ID, announcement.UpdateAnnouncement{Content: &content})
	assert.Equal(t, core.ErrPermissionDenied, err)
	_, err = svc.Update(ctx, admin.Actor(), "missing", announcement.UpdateAnnouncement{Content: &content})
	assert.Equal(t, announcement.ErrNotFound, err)

	assert.Equal(t, core.ErrPermissionDenied, svc.Delete(ctx, teacher.Actor(), a.ID))
	require.NoError(t, svc.Delete(ctx, admin.Actor(), a.ID))
	assert.Equal(t, announcement.ErrNotFound, svc.Delete(ctx, admin.Actor(), a.ID))
}
