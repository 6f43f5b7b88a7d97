package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_authApi_login(t *testing.T) {
	e := setup(t)

	login := func(email, pwd string) []byte {
		return marchallObj(t, echo.Map{"email": email, "password": pwd})
	}
	badCreds := failure(t, "invalid credentials")

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/api/auth/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, "validation failed", map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/auth/login", body: []byte(`{"email":`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/api/auth/login",
			body: login("nobody@university.edu", "Stud3nt!pass"), wantCode: http.StatusUnauthorized, wantData: badCreds,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/auth/login",
			body: login("student@university.edu", "wrong"), wantCode: http.StatusUnauthorized, wantData: badCreds,
		},
		{
			name: "bypass needs a known email", method: http.MethodPost, path: "/api/auth/login",
			body: login("nobody@university.edu", "admin123"), wantCode: http.StatusUnauthorized, wantData: badCreds,
		},
	}
	runHTTPTests(t, e, tests)

	valid := []struct {
		name, email, pwd string
	}{
		{name: "password", email: "student@university.edu", pwd: "Stud3nt!pass"},
		{name: "email is cleaned", email: "  Student@University.edu ", pwd: "Stud3nt!pass"},
		{name: "demo admin123", email: "student@university.edu", pwd: "admin123"},
		{name: "demo student123", email: "teacher@university.edu", pwd: "student123"},
		{name: "demo enseignant123", email: "admin@university.edu", pwd: "enseignant123"},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, httpTest{method: http.MethodPost, path: "/api/auth/login", body: login(tt.email, tt.pwd)})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var res struct {
				Success bool   `json:"success"`
				Token   string `json:"token"`
				User    struct {
					ID       string `json:"id"`
					Email    string `json:"email"`
					Password string `json:"passwordHash"`
				} `json:"user"`
			}
			decode(t, rec, &res)
			assert.True(t, res.Success)
			assert.NotEmpty(t, res.Token)
			assert.Empty(t, res.User.Password)

			claims, ok := e.auth.Verify(res.Token)
			require.True(t, ok)
			assert.Equal(t, res.User.ID, claims.Subject)

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, "auth-token", c.Name)
			assert.Equal(t, res.Token, c.Value)
			assert.Equal(t, "/", c.Path)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			assert.Equal(t, 7*24*60*60, c.MaxAge)
		})
	}
}

func Test_authApi_me(t *testing.T) {
	e := setup(t)
	token := e.token(t, e.teacher)
	me := success(t, echo.Map{"user": echo.Map{
		"id": e.teacher.ID, "email": e.teacher.Email, "name": e.teacher.Name, "role": "teacher",
	}})
	unauthorized := failure(t, "not authenticated")

	tests := []httpTest{
		{name: "no session", path: "/api/auth/me", wantCode: http.StatusUnauthorized, wantData: unauthorized},
		{name: "garbage token", path: "/api/auth/me", token: "not-a-token", wantCode: http.StatusUnauthorized, wantData: unauthorized},
		{name: "bearer token", path: "/api/auth/me", token: token, wantCode: http.StatusOK, wantData: me},
	}
	runHTTPTests(t, e, tests)

	t.Run("cookie", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/auth/me")
		req.AddCookie(&http.Cookie{Name: "auth-token", Value: token})
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: me}, rec)
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, e.repos.Users.DeleteUser(context.Background(), e.student2.ID))
		rec := e.do(t, httpTest{path: "/api/auth/me", token: e.token(t, e.student2)})
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: unauthorized}, rec)
	})
}

func Test_authApi_logout(t *testing.T) {
	e := setup(t)
	rec := e.do(t, httpTest{method: http.MethodPost, path: "/api/auth/logout"})
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: success(t, nil)}, rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth-token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func Test_home(t *testing.T) {
	e := setup(t)
	runHTTPTests(t, e, []httpTest{
		{name: "banner", path: "/", wantCode: http.StatusOK, wantData: success(t, echo.Map{"message": "Welcome to Campus Tasks API!"})},
		{name: "unknown route", path: "/api/nope", wantCode: http.StatusNotFound, wantData: failure(t, "Not Found")},
	})
}
