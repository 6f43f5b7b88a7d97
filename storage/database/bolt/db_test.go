package boltrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	boltrepos "github.com/Armandk18/taskmanager/storage/database/bolt"
	testutil "github.com/Armandk18/taskmanager/tests"
)

func TestRepositories(t *testing.T) {
	testutil.RunRepositoryTests(t, func(t *testing.T) testutil.Repos {
		db, err := boltrepos.Open(testutil.TempPath(t, "data/taskmanager.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return testutil.Repos{
			Users:         boltrepos.NewUserRepository(db),
			Tasks:         boltrepos.NewTaskRepository(db),
			Announcements: boltrepos.NewAnnouncementRepository(db),
			Events:        boltrepos.NewEventRepository(db),
		}
	})
}

func TestOpen_reopen(t *testing.T) {
	path := testutil.TempPath(t, "taskmanager.db")
	db, err := boltrepos.Open(path)
	require.NoError(t, err)
	usr := testutil.CreateUser(t, boltrepos.NewUserRepository(db), "Jane", "jane@university.edu", "", "student")
	require.NoError(t, db.Close())

	db, err = boltrepos.Open(path)
	require.NoError(t, err)
	defer db.Close()
	users, err := boltrepos.NewUserRepository(db).QueryUsers(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, usr.ID, users[0].ID)
}
