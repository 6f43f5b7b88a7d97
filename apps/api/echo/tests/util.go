package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	echoapi "github.com/Armandk18/taskmanager/apps/api/echo"
	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
	emailsvc "github.com/Armandk18/taskmanager/services/email"
	inmemdb "github.com/Armandk18/taskmanager/storage/database/inmem"
	testutil "github.com/Armandk18/taskmanager/tests"
)

type env struct {
	app     *echoapi.Server
	auth    *user.Authenticator
	mailSvc *emailsvc.ConsoleServiceMock
	repos   testutil.Repos

	admin, teacher, teacher2 user.User
	student, student2       user.User
}

// setup builds the API on fresh in-memory storage, with one admin, two teachers and two students.
func setup(t *testing.T) *env {
	conf := core.NewTestConfig()

	db := inmemdb.Open()
	repos := testutil.Repos{
		Users:         inmemdb.NewUserRepository(db),
		Tasks:         inmemdb.NewTaskRepository(db),
		Announcements: inmemdb.NewAnnouncementRepository(db),
		Events:        inmemdb.NewEventRepository(db),
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	auth := user.NewAuthenticator(repos.Users, user.AuthenticatorOptions{
		SecretKey:  conf.SecretKey,
		Issuer:     conf.AppName,
		SessionTTL: conf.Auth.SessionTTL,
		DemoBypass: conf.Auth.DemoBypass,
	})

	e := &env{
		app: echoapi.NewServer(echoapi.ServerDeps{
			Conf:            conf,
			Logger:          core.NopLogger,
			Validate:        validate,
			Translator:      translator,
			Auth:            auth,
			UserSvc:         user.NewService(repos.Users),
			TaskSvc:         task.NewService(repos.Tasks, repos.Users, mailSvc, core.NopLogger),
			AnnouncementSvc: announcement.NewService(repos.Announcements, repos.Users),
			EventSvc:        event.NewService(repos.Events, repos.Users),
		}),
		auth:    auth,
		mailSvc: mailSvc,
		repos:   repos,
	}
	now := time.Now().UTC()
	e.admin = testutil.CreateUser(t, repos.Users, "Admin", "admin@university.edu", "Adm1n!pass", user.RoleAdmin, now)
	e.teacher = testutil.CreateUser(t, repos.Users, "Teacher", "teacher@university.edu", "T3acher!pass", user.RoleTeacher, now.Add(time.Second))
	e.teacher2 = testutil.CreateUser(t, repos.Users, "Other Teacher", "teacher2@university.edu", "T3acher!pass", user.RoleTeacher, now.Add(2*time.Second))
	e.student = testutil.CreateUser(t, repos.Users, "Student", "student@university.edu", "Stud3nt!pass", user.RoleStudent, now.Add(3*time.Second))
	e.student2 = testutil.CreateUser(t, repos.Users, "Other Student", "student2@university.edu", "Stud3nt!pass", user.RoleStudent, now.Add(4*time.Second))
	return e
}

func (e *env) token(t *testing.T, usr user.User) string {
	token, err := e.auth.Issue(usr)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// do serves the request and returns the recorder.
func (e *env) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	return rec
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func success(t *testing.T, data echo.Map) []byte {
	body := echo.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}
	return marchallObj(t, body)
}

func failure(t *testing.T, msg string, fields ...map[string]string) []byte {
	body := echo.Map{"success": false, "message": msg}
	if len(fields) > 0 {
		body["errors"] = fields[0]
	}
	return marchallObj(t, body)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, e *env, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, e.do(t, tt))
		})
	}
}
