package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armandk18/taskmanager/core"
)

// mapRepo is a minimal Repository for tests of this package.
type mapRepo struct {
	mu    sync.Mutex
	users map[string]User
	seq   int
}

var _ Repository = (*mapRepo)(nil)

func newMapRepo() *mapRepo { return &mapRepo{users: make(map[string]User)} }

func (r *mapRepo) CreateUser(_ context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == usr.Email {
			return User{}, ErrEmailExists
		}
	}
	r.seq++
	usr.ID = string(rune('a' + r.seq))
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *mapRepo) GetUser(_ context.Context, filter GetFilter) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (filter.ID != "" && u.ID == filter.ID) || (filter.Email != "" && u.Email == filter.Email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *mapRepo) QueryUsers(context.Context, *QueryFilter) ([]User, error) { return nil, nil }

func (r *mapRepo) UpdateUser(_ context.Context, id string, uu UpdateUser, pwdHash []byte) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	usr, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if uu.Name != nil {
		usr.Name = *uu.Name
	}
	if pwdHash != nil {
		usr.PasswordHash = pwdHash
	}
	r.users[id] = usr
	return usr, nil
}

func (r *mapRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr error
	}{
		{in: "student", want: RoleStudent},
		{in: " Teacher ", want: RoleTeacher},
		{in: "ADMIN", want: RoleAdmin},
		{in: "enseignant", wantErr: ErrInvalidRole},
		{in: "", wantErr: ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		attrs   []string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 123!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "not complex", pwd: "abcdefgh1", wantTag: pwdComplexityTag},
		{name: "similar to name", pwd: "Jane.doe@1", attrs: []string{"Jane.Doe", "jane@test.test"}, wantTag: pwdAttrSimTag},
		{name: "ok", pwd: "Tr0ub4dor&3", attrs: []string{"Jane Doe", "jane@test.test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PasswordPolicy(tt.pwd, tt.attrs...)
			if tt.wantTag == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantTag, err.tag)
		})
	}
}

func TestNewUser_Validate(t *testing.T) {
	validate := newValidator()

	nu := NewUser{Email: "  Jane@Test.TEST ", Name: " Jane ", Role: "Teacher", Password: "Tr0ub4dor&3"}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, "jane@test.test", nu.Email)
	assert.Equal(t, "Jane", nu.Name)
	assert.Equal(t, RoleTeacher, nu.Role)

	bad := NewUser{Email: "jane", Name: " ", Role: "enseignant", Password: "short"}
	err := bad.Validate(validate)
	require.Error(t, err)
	fields := map[string]bool{}
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = true
	}
	assert.Equal(t, map[string]bool{"email": true, "name": true, "role": true, "password": true}, fields)
}

func newTestAuthenticator(repo Repository, bypass bool) *Authenticator {
	return NewAuthenticator(repo, AuthenticatorOptions{
		SecretKey:  "secret",
		Issuer:     "test",
		SessionTTL: 7 * 24 * time.Hour,
		DemoBypass: bypass,
	})
}

func createUser(t *testing.T, repo Repository, email, pwd string, role Role) User {
	usr := User{Email: email, Name: "U", Role: role, CreatedAt: time.Now().UTC()}
	require.NoError(t, usr.SetPassword(pwd))
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func TestAuthenticator_Login(t *testing.T) {
	repo := newMapRepo()
	usr := createUser(t, repo, "student@university.edu", "S3cret!pwd", RoleStudent)
	auth := newTestAuthenticator(repo, true)
	strict := newTestAuthenticator(repo, false)
	ctx := context.Background()

	tests := []struct {
		name    string
		auth    *Authenticator
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", auth: auth, email: "nobody@university.edu", pwd: "S3cret!pwd", wantErr: ErrInvalidCredentials},
		{name: "wrong password", auth: auth, email: usr.Email, pwd: "nope", wantErr: ErrInvalidCredentials},
		{name: "valid", auth: auth, email: usr.Email, pwd: "S3cret!pwd"},
		{name: "email is normalized", auth: auth, email: " Student@University.EDU", pwd: "S3cret!pwd"},
		{name: "demo bypass admin123", auth: auth, email: usr.Email, pwd: "admin123"},
		{name: "demo bypass student123", auth: auth, email: usr.Email, pwd: "student123"},
		{name: "demo bypass enseignant123", auth: auth, email: usr.Email, pwd: "enseignant123"},
		{name: "demo bypass disabled", auth: strict, email: usr.Email, pwd: "student123", wantErr: ErrInvalidCredentials},
		{name: "demo bypass needs a known email", auth: auth, email: "ghost@university.edu", pwd: "admin123", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, token, err := tt.auth.Login(ctx, tt.email, tt.pwd)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr != nil {
				assert.Empty(t, token)
				return
			}
			assert.Equal(t, usr.ID, got.ID)
			claims, ok := tt.auth.Verify(token)
			require.True(t, ok)
			assert.Equal(t, Actor{ID: usr.ID, Role: RoleStudent}, claims.Actor())
			assert.Equal(t, usr.Email, claims.Email)
		})
	}
}

func TestAuthenticator_Verify(t *testing.T) {
	repo := newMapRepo()
	usr := createUser(t, repo, "admin@university.edu", "Adm1n!pwd", RoleAdmin)
	auth := newTestAuthenticator(repo, false)

	valid, err := auth.Issue(usr)
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expired, err := auth.Issue(usr)
	require.NoError(t, err)
	auth.now = time.Now // reset

	other := newTestAuthenticator(repo, false)
	other.opts.SecretKey = "other secret"
	forged, err := other.Issue(usr)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		wantOk bool
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "lmaooolol"},
		{name: "expired", token: expired},
		{name: "bad signature", token: forged},
		{name: "none algorithm", token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhIiwicm9sZSI6ImFkbWluIn0."},
		{name: "valid", token: valid, wantOk: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := auth.Verify(tt.token)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, RoleAdmin, claims.Role)
				assert.Equal(t, usr.ID, claims.Subject)
			} else {
				assert.Nil(t, claims)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	repo := newMapRepo()
	usr := createUser(t, repo, "teacher@university.edu", "T3acher!pwd", RoleTeacher)
	svc := NewService(repo)
	ctx := context.Background()

	pwd := "N3w-Passw0rd"
	name := "New Name"
	got, err := svc.Update(ctx, usr.ID, UpdateUser{Name: &name, Password: &pwd})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.NoError(t, got.CheckPassword(pwd))

	_, err = svc.Update(ctx, "missing", UpdateUser{Name: &name})
	assert.Equal(t, ErrNotFound, err)
}

func TestService_Create_duplicateEmail(t *testing.T) {
	repo := newMapRepo()
	createUser(t, repo, "dup@university.edu", "D-up1234", RoleStudent)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), NewUser{Email: "dup@university.edu", Name: "Dup", Role: RoleStudent, Password: "D-up1234"})
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "email", vErr.Fields[0].Field)
}

func TestService_SeedDemo(t *testing.T) {
	repo := newMapRepo()
	createUser(t, repo, "admin@university.edu", "Adm1n!pass", RoleAdmin)
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.SeedDemo(ctx)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "student@university.edu", created[0].Email)
	assert.Equal(t, RoleStudent, created[0].Role)
	assert.NoError(t, created[0].CheckPassword("student123"))
	assert.Equal(t, RoleTeacher, created[1].Role)

	// the existing admin keeps its password
	admin, err := repo.GetUser(ctx, GetFilter{Email: "admin@university.edu"})
	require.NoError(t, err)
	assert.NoError(t, admin.CheckPassword("Adm1n!pass"))

	created, err = svc.SeedDemo(ctx)
	require.NoError(t, err)
	assert.Empty(t, created)
}
