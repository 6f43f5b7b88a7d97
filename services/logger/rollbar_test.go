package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), core.NewTestConfig())
	err := errors.New("boom")
	student := user.User{ID: "1", Name: "Jane", Email: "jane@university.edu", Role: user.RoleStudent}
	extras := map[string]interface{}{"path": "/api/tasks"}

	tests := []struct {
		name      string
		args      []interface{}
		want      []interface{}
		wantActor string
	}{
		{name: "message only", want: []interface{}{"failed"}},
		{
			name: "no actor keeps the extras",
			args: []interface{}{err, extras},
			want: []interface{}{"failed", err, extras},
		},
		{
			name:      "one user is reported with its role",
			args:      []interface{}{err, student, extras, user.User{ID: "2"}},
			want:      []interface{}{"failed", err, map[string]interface{}{"path": "/api/tasks", "role": "student"}},
			wantActor: "1",
		},
		{
			name:      "actor without extras",
			args:      []interface{}{user.Actor{ID: "7", Role: user.RoleTeacher}, err},
			want:      []interface{}{"failed", err, map[string]interface{}{"role": "teacher"}},
			wantActor: "7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, actor := l.prepare("failed", tt.args)
			assert.Equal(t, tt.want, args)
			if tt.wantActor == "" {
				assert.Nil(t, actor)
				return
			}
			require.NotNil(t, actor)
			assert.Equal(t, tt.wantActor, actor.id)
		})
	}
	// the caller's map is left untouched
	assert.Equal(t, map[string]interface{}{"path": "/api/tasks"}, extras)
}

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())

	admin := user.User{ID: "42", Name: "Admin", Email: "admin@university.edu", Role: user.RoleAdmin, PasswordHash: []byte("secret-hash")}
	l.Error("failed", errors.New("boom"), admin, map[string]interface{}{"path": "/api/users"})
	// %+v adds the stack trace of the error
	assert.True(t, strings.HasPrefix(buf.String(), "failed [admin 42]\nboom\n"), buf.String())
	assert.True(t, strings.HasSuffix(buf.String(), "\nmap[path:/api/users role:admin]\n"), buf.String())
	assert.NotContains(t, buf.String(), "secret-hash")

	buf.Reset()
	l.Info("started")
	assert.Equal(t, "started\n", buf.String())
}
