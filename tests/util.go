package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
	"github.com/Armandk18/taskmanager/storage/database"
)

// PrepareDB returns a migrated private in-memory SQLite database, closed with the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(database.MemoryPath)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// TempPath returns a file path inside a directory removed with the test.
func TempPath(t *testing.T, name string) string {
	return filepath.Join(t.TempDir(), name)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateTask stores a task assigned to `student` by `creator`.
func CreateTask(
	t *testing.T,
	repo task.Repository,
	title, dueDate string,
	student, creator user.User,
	sharedWith ...string,
) task.Task {
	t.Helper()
	tsk, err := repo.CreateTask(context.Background(), task.Task{
		Title:         title,
		Description:   title + " description",
		DueDate:       dueDate,
		StudentID:     student.ID,
		CreatedByID:   creator.ID,
		CreatedByRole: creator.Role,
		Priority:      "medium",
		SharedWith:    sharedWith,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}

func CreateAnnouncement(t *testing.T, repo announcement.Repository, title string, author user.User, createdAt time.Time) announcement.Announcement {
	t.Helper()
	a, err := repo.CreateAnnouncement(context.Background(), announcement.Announcement{
		Title:      title,
		Content:    title + " content",
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Priority:   "medium",
		CreatedAt:  createdAt.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement() failed: %v", err)
	}
	return a
}

func CreateEvent(
	t *testing.T,
	repo event.Repository,
	title, startDate, endDate string,
	vis event.Visibility,
	creator user.User,
) event.Event {
	t.Helper()
	e, err := repo.CreateEvent(context.Background(), event.Event{
		Title:         title,
		StartDate:     startDate,
		EndDate:       endDate,
		CreatedBy:     creator.ID,
		CreatedByName: creator.Name,
		Visibility:    vis,
		Color:         event.DefaultColor,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return e
}
