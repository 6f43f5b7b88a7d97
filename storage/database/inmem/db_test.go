package inmemdb_test

import (
	"testing"

	inmemdb "github.com/Armandk18/taskmanager/storage/database/inmem"
	testutil "github.com/Armandk18/taskmanager/tests"
)

func TestRepositories(t *testing.T) {
	testutil.RunRepositoryTests(t, func(t *testing.T) testutil.Repos {
		db := inmemdb.Open()
		return testutil.Repos{
			Users:         inmemdb.NewUserRepository(db),
			Tasks:         inmemdb.NewTaskRepository(db),
			Announcements: inmemdb.NewAnnouncementRepository(db),
			Events:        inmemdb.NewEventRepository(db),
		}
	})
}
