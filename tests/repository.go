package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
)

// Repos groups one implementation of every repository, sharing the same storage.
type Repos struct {
	Users         user.Repository
	Tasks         task.Repository
	Announcements announcement.Repository
	Events        event.Repository
}

// RunRepositoryTests checks the behaviour every storage backend must share.
// `newRepos` must return empty repositories on each call.
func RunRepositoryTests(t *testing.T, newRepos func(t *testing.T) Repos) {
	t.Run("users", func(t *testing.T) { testUserRepository(t, newRepos(t)) })
	t.Run("tasks", func(t *testing.T) { testTaskRepository(t, newRepos(t)) })
	t.Run("task shares", func(t *testing.T) { testTaskShares(t, newRepos(t)) })
	t.Run("announcements", func(t *testing.T) { testAnnouncementRepository(t, newRepos(t)) })
	t.Run("events", func(t *testing.T) { testEventRepository(t, newRepos(t)) })
}

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func ids[T any](items []T, id func(T) string) []string {
	res := make([]string, 0, len(items))
	for _, it := range items {
		res = append(res, id(it))
	}
	return res
}

func userID(u user.User) string                 { return u.ID }
func taskID(t task.Task) string                 { return t.ID }
func annID(a announcement.Announcement) string  { return a.ID }
func eventID(e event.Event) string              { return e.ID }

func testUserRepository(t *testing.T, repos Repos) {
	ctx := context.Background()
	repo := repos.Users

	teacher := CreateUser(t, repo, "Teacher", "teacher@university.edu", "T3acher!pwd", user.RoleTeacher, base.Add(2*time.Minute))
	student := CreateUser(t, repo, "Student", "student@university.edu", "Stud3nt!pwd", user.RoleStudent, base)
	admin := CreateUser(t, repo, "Admin", "admin@university.edu", "Adm1n!pwd", user.RoleAdmin, base.Add(time.Minute))
	assert.NotEmpty(t, student.ID)
	assert.NotEqual(t, student.ID, teacher.ID)

	_, err := repo.CreateUser(ctx, user.User{Email: "student@university.edu", Name: "Dup", Role: user.RoleStudent, CreatedAt: base})
	assert.Equal(t, user.ErrEmailExists, err)

	got, err := repo.GetUser(ctx, user.GetFilter{ID: student.ID})
	require.NoError(t, err)
	assert.Equal(t, student.Email, got.Email)
	assert.Equal(t, user.RoleStudent, got.Role)
	assert.NoError(t, got.CheckPassword("Stud3nt!pwd"))

	got, err = repo.GetUser(ctx, user.GetFilter{Email: "admin@university.edu"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = repo.GetUser(ctx, user.GetFilter{Email: "nobody@university.edu"})
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.GetUser(ctx, user.GetFilter{ID: "missing"})
	assert.Equal(t, user.ErrNotFound, err)

	all, err := repo.QueryUsers(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{student.ID, admin.ID, teacher.ID}, ids(all, userID))

	students, err := repo.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, []string{student.ID}, ids(students, userID))

	name := "Renamed"
	role := user.RoleAdmin
	var hashed user.User
	require.NoError(t, hashed.SetPassword("N3w!passwd"))
	updated, err := repo.UpdateUser(ctx, teacher.ID, user.UpdateUser{Name: &name, Role: &role}, hashed.PasswordHash)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, user.RoleAdmin, updated.Role)
	assert.Equal(t, teacher.Email, updated.Email)
	assert.NoError(t, updated.CheckPassword("N3w!passwd"))

	_, err = repo.UpdateUser(ctx, "missing", user.UpdateUser{Name: &name}, nil)
	assert.Equal(t, user.ErrNotFound, err)

	require.NoError(t, repo.DeleteUser(ctx, admin.ID))
	assert.Equal(t, user.ErrNotFound, repo.DeleteUser(ctx, admin.ID))
	_, err = repo.GetUser(ctx, user.GetFilter{Email: admin.Email})
	assert.Equal(t, user.ErrNotFound, err)
}

func testTaskRepository(t *testing.T, repos Repos) {
	ctx := context.Background()
	repo := repos.Tasks

	teacher := CreateUser(t, repos.Users, "Teacher", "teacher@university.edu", "", user.RoleTeacher)
	s1 := CreateUser(t, repos.Users, "S1", "s1@university.edu", "", user.RoleStudent)
	s2 := CreateUser(t, repos.Users, "S2", "s2@university.edu", "", user.RoleStudent)

	late := CreateTask(t, repo, "late", "2024-06-10", s1, teacher)
	early := CreateTask(t, repo, "early", "2024-06-01", s2, teacher, s1.ID)
	own := CreateTask(t, repo, "own", "2024-06-05", s1, s1)
	assert.Equal(t, []string{}, late.SharedWith)
	assert.Equal(t, []string{s1.ID}, early.SharedWith)

	got, err := repo.GetTask(ctx, early.ID)
	require.NoError(t, err)
	assert.Equal(t, "early", got.Title)
	assert.Equal(t, s2.ID, got.StudentID)
	assert.Equal(t, teacher.ID, got.CreatedByID)
	assert.Equal(t, user.RoleTeacher, got.CreatedByRole)
	assert.Equal(t, []string{s1.ID}, got.SharedWith)
	assert.False(t, got.Completed)

	_, err = repo.GetTask(ctx, "missing")
	assert.Equal(t, task.ErrNotFound, err)

	tests := []struct {
		name   string
		filter *task.QueryFilter
		want   []string
	}{
		{name: "all ordered by due date", filter: nil, want: []string{early.ID, own.ID, late.ID}},
		{name: "created by", filter: &task.QueryFilter{CreatedByID: teacher.ID}, want: []string{early.ID, late.ID}},
		{name: "assigned or shared", filter: &task.QueryFilter{AssignedTo: s1.ID}, want: []string{early.ID, own.ID, late.ID}},
		{name: "assigned only", filter: &task.QueryFilter{AssignedTo: s2.ID}, want: []string{early.ID}},
		{name: "both", filter: &task.QueryFilter{CreatedByID: teacher.ID, AssignedTo: s1.ID}, want: []string{early.ID, late.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.QueryTasks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(tasks, taskID))
		})
	}

	completed := true
	updated, err := repo.UpdateTask(ctx, late.ID, task.UpdateTask{Completed: &completed})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "late", updated.Title)
	assert.Equal(t, "2024-06-10", updated.DueDate)

	title, prio := "later", "high"
	updated, err = repo.UpdateTask(ctx, late.ID, task.UpdateTask{Title: &title, Priority: &prio})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "later", updated.Title)
	assert.Equal(t, "high", updated.Priority)

	_, err = repo.UpdateTask(ctx, "missing", task.UpdateTask{Title: &title})
	assert.Equal(t, task.ErrNotFound, err)

	// deleting an unknown task leaves the store untouched
	assert.Equal(t, task.ErrNotFound, repo.DeleteTask(ctx, "missing"))
	all, err := repo.QueryTasks(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repo.DeleteTask(ctx, own.ID))
	_, err = repo.GetTask(ctx, own.ID)
	assert.Equal(t, task.ErrNotFound, err)
}

func testTaskShares(t *testing.T, repos Repos) {
	ctx := context.Background()
	repo := repos.Tasks

	teacher := CreateUser(t, repos.Users, "Teacher", "teacher@university.edu", "", user.RoleTeacher)
	owner := CreateUser(t, repos.Users, "Owner", "owner@university.edu", "", user.RoleStudent)
	students := make([]user.User, 0, 8)
	for i := 0; i < 8; i++ {
		students = append(students, CreateUser(t, repos.Users, fmt.Sprintf("S%d", i), fmt.Sprintf("s%d@university.edu", i), "", user.RoleStudent))
	}
	tsk := CreateTask(t, repo, "shared", "2024-06-01", owner, teacher)

	got, err := repo.AddTaskShares(ctx, tsk.ID, students[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{students[0].ID}, got.SharedWith)

	// sharing twice keeps a single entry
	got, err = repo.AddTaskShares(ctx, tsk.ID, students[0].ID, students[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{students[0].ID}, got.SharedWith)

	// removing an absent id is a no-op
	got, err = repo.RemoveTaskShare(ctx, tsk.ID, students[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{students[0].ID}, got.SharedWith)

	got, err = repo.RemoveTaskShare(ctx, tsk.ID, students[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.SharedWith)

	_, err = repo.AddTaskShares(ctx, "missing", students[0].ID)
	assert.Equal(t, task.ErrNotFound, err)
	_, err = repo.RemoveTaskShare(ctx, "missing", students[0].ID)
	assert.Equal(t, task.ErrNotFound, err)

	// concurrent shares on one task are all kept
	var wg sync.WaitGroup
	for _, s := range students {
		wg.Add(1)
		go func(sid string) {
			defer wg.Done()
			_, err := repo.AddTaskShares(ctx, tsk.ID, sid)
			assert.NoError(t, err)
		}(s.ID)
	}
	wg.Wait()
	got, err = repo.GetTask(ctx, tsk.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(students, userID), got.SharedWith)
}

func testAnnouncementRepository(t *testing.T, repos Repos) {
	ctx := context.Background()
	repo := repos.Announcements

	admin := CreateUser(t, repos.Users, "Admin", "admin@university.edu", "", user.RoleAdmin)
	old := CreateAnnouncement(t, repo, "old", admin, base)
	recent := CreateAnnouncement(t, repo, "recent", admin, base.Add(time.Hour))
	middle := CreateAnnouncement(t, repo, "middle", admin, base.Add(time.Minute))

	anns, err := repo.QueryAnnouncements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{recent.ID, middle.ID, old.ID}, ids(anns, annID))

	got, err := repo.GetAnnouncement(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.AuthorID)
	assert.Equal(t, "Admin", got.AuthorName)

	content := "edited"
	updated, err := repo.UpdateAnnouncement(ctx, old.ID, announcement.UpdateAnnouncement{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "old", updated.Title)
	assert.Equal(t, "edited", updated.Content)

	_, err = repo.UpdateAnnouncement(ctx, "missing", announcement.UpdateAnnouncement{Content: &content})
	assert.Equal(t, announcement.ErrNotFound, err)
	_, err = repo.GetAnnouncement(ctx, "missing")
	assert.Equal(t, announcement.ErrNotFound, err)

	require.NoError(t, repo.DeleteAnnouncement(ctx, middle.ID))
	assert.Equal(t, announcement.ErrNotFound, repo.DeleteAnnouncement(ctx, middle.ID))
}

func testEventRepository(t *testing.T, repos Repos) {
	ctx := context.Background()
	repo := repos.Events

	admin := CreateUser(t, repos.Users, "Admin", "admin@university.edu", "", user.RoleAdmin)
	student := CreateUser(t, repos.Users, "Student", "student@university.edu", "", user.RoleStudent)
	other := CreateUser(t, repos.Users, "Other", "other@university.edu", "", user.RoleStudent)

	exams := CreateEvent(t, repo, "exams", "2024-05-01", "2024-05-03", event.VisibilityPublic, admin)
	study := CreateEvent(t, repo, "study", "2024-04-28", "2024-05-01", event.VisibilityPrivate, student)
	party := CreateEvent(t, repo, "party", "2024-05-04", "2024-05-06", event.VisibilityPrivate, other)
	meeting := CreateEvent(t, repo, "meeting", "2024-05-10", "2024-05-10", event.VisibilityPrivate, admin)

	got, err := repo.GetEvent(ctx, exams.ID)
	require.NoError(t, err)
	assert.Equal(t, "exams", got.Title)
	assert.Equal(t, event.DefaultColor, got.Color)
	assert.Empty(t, got.StartTime)

	tests := []struct {
		name   string
		filter *event.QueryFilter
		want   []string
	}{
		{name: "all soonest first", want: []string{study.ID, exams.ID, party.ID, meeting.ID}},
		{name: "visible to student", filter: &event.QueryFilter{VisibleTo: student.ID}, want: []string{study.ID, exams.ID}},
		{name: "inclusive window", filter: &event.QueryFilter{From: "2024-05-03", To: "2024-05-10"}, want: []string{exams.ID, party.ID, meeting.ID}},
		{name: "window and visibility", filter: &event.QueryFilter{VisibleTo: other.ID, From: "2024-05-01", To: "2024-05-05"}, want: []string{exams.ID, party.ID}},
		{name: "empty window", filter: &event.QueryFilter{From: "2024-07-01", To: "2024-07-31"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.QueryEvents(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(events, eventID))
		})
	}

	start, end := "09:00", "10:30"
	updated, err := repo.UpdateEvent(ctx, meeting.ID, event.UpdateEvent{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, "10:30", updated.EndTime)
	assert.Equal(t, "meeting", updated.Title)

	cleared := ""
	updated, err = repo.UpdateEvent(ctx, meeting.ID, event.UpdateEvent{StartTime: &cleared})
	require.NoError(t, err)
	assert.Empty(t, updated.StartTime)
	assert.Equal(t, "10:30", updated.EndTime)

	_, err = repo.UpdateEvent(ctx, "missing", event.UpdateEvent{StartTime: &start})
	assert.Equal(t, event.ErrNotFound, err)

	require.NoError(t, repo.DeleteEvent(ctx, party.ID))
	assert.Equal(t, event.ErrNotFound, repo.DeleteEvent(ctx, party.ID))
}
