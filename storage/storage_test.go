package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
	"github.com/Armandk18/taskmanager/storage"
	testutil "github.com/Armandk18/taskmanager/tests"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		conf    func(t *testing.T) core.DatabaseConfig
		wantSQL bool
	}{
		{name: "memory", conf: func(*testing.T) core.DatabaseConfig { return core.DatabaseConfig{Engine: "memory"} }},
		{name: "bolt", conf: func(t *testing.T) core.DatabaseConfig {
			return core.DatabaseConfig{Engine: "bolt", Path: testutil.TempPath(t, "data/university.bolt")}
		}},
		{name: "sqlite", wantSQL: true, conf: func(t *testing.T) core.DatabaseConfig {
			return core.DatabaseConfig{Engine: "sqlite", Path: testutil.TempPath(t, "data/university.db")}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repos, err := storage.Open(ctx, tt.conf(t))
			require.NoError(t, err)
			defer func() { assert.NoError(t, repos.Close()) }()
			assert.Equal(t, tt.wantSQL, repos.SQL != nil)

			usr := testutil.CreateUser(t, repos.Users, "Student", "student@university.edu", "Stud3nt!pass", user.RoleStudent)
			got, err := repos.Users.GetUser(ctx, user.GetFilter{Email: "student@university.edu"})
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
		})
	}

	_, err := storage.Open(context.Background(), core.DatabaseConfig{Engine: "mongo"})
	assert.EqualError(t, err, `unsupported database engine "mongo"`)
}
