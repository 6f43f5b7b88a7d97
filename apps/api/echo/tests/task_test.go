package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Armandk18/taskmanager/core/task"
	testutil "github.com/Armandk18/taskmanager/tests"
)

type tasksResponse struct {
	Success bool        `json:"success"`
	Tasks   []task.Task `json:"tasks"`
	Task    task.Task   `json:"task"`
}

func Test_taskApi_create(t *testing.T) {
	e := setup(t)
	teacherToken := e.token(t, e.teacher)

	newTask := func(studentID string) []byte {
		return marchallObj(t, echo.Map{
			"title": "Essay", "description": "Chapter 3", "dueDate": "2024-06-01", "priority": "high", "studentId": studentID,
		})
	}

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/api/tasks", body: newTask(""), wantCode: http.StatusUnauthorized},
		{
			name: "missing fields", method: http.MethodPost, path: "/api/tasks", token: teacherToken, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, "validation failed", map[string]string{
				"title":       "this field is required",
				"description": "this field is required",
				"dueDate":     "this field is required",
			}),
		},
		{
			name: "bad due date", method: http.MethodPost, path: "/api/tasks", token: teacherToken,
			body:     marchallObj(t, echo.Map{"title": "Essay", "description": "x", "dueDate": "01/06/2024", "studentId": e.student.ID}),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, "validation failed", map[string]string{"dueDate": "invalid date or time format"}),
		},
		{
			name: "staff must pick a student", method: http.MethodPost, path: "/api/tasks", token: teacherToken, body: newTask(""),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, "studentId: this field is required", map[string]string{"studentId": "this field is required"}),
		},
		{
			name: "target must be a student", method: http.MethodPost, path: "/api/tasks", token: teacherToken, body: newTask(e.teacher2.ID),
			wantCode: http.StatusBadRequest,
			wantData: failure(t, task.ErrNotStudent.Error(), map[string]string{"studentId": task.ErrNotStudent.Error()}),
		},
	}
	runHTTPTests(t, e, tests)

	t.Run("student creates for self", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodPost, path: "/api/tasks", token: e.token(t, e.student), body: newTask(e.student2.ID)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res tasksResponse
		decode(t, rec, &res)
		require.Len(t, res.Tasks, 1)
		assert.Equal(t, e.student.ID, res.Tasks[0].StudentID)
		assert.Equal(t, "student", string(res.Tasks[0].CreatedByRole))
		assert.Equal(t, "high", res.Tasks[0].Priority)
		assert.Equal(t, []string{}, res.Tasks[0].SharedWith)
	})

	t.Run("broadcast", func(t *testing.T) {
		sent := len(e.mailSvc.Sent())
		rec := e.do(t, httpTest{method: http.MethodPost, path: "/api/tasks", token: teacherToken, body: newTask(task.BroadcastStudentID)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res tasksResponse
		decode(t, rec, &res)
		require.Len(t, res.Tasks, 2)
		assert.ElementsMatch(t, []string{e.student.ID, e.student2.ID}, []string{res.Tasks[0].StudentID, res.Tasks[1].StudentID})
		assert.NotEqual(t, res.Tasks[0].ID, res.Tasks[1].ID)
		assert.Len(t, e.mailSvc.Sent(), sent+2)
	})
}

func Test_taskApi_access(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	tsk := testutil.CreateTask(t, e.repos.Tasks, "Essay", "2024-06-01", e.student, e.teacher, e.student2.ID)
	own := testutil.CreateTask(t, e.repos.Tasks, "Revise", "2024-06-02", e.student2, e.student2)
	path := "/api/tasks/" + tsk.ID

	denied := failure(t, "permission denied")
	done := marchallObj(t, echo.Map{"completed": true})

	list := func(t *testing.T, token string) []string {
		rec := e.do(t, httpTest{path: "/api/tasks", token: token})
		require.Equal(t, http.StatusOK, rec.Code)
		var res tasksResponse
		decode(t, rec, &res)
		ids := make([]string, 0, len(res.Tasks))
		for _, it := range res.Tasks {
			ids = append(ids, it.ID)
		}
		return ids
	}
	assert.Equal(t, []string{tsk.ID, own.ID}, list(t, e.token(t, e.admin)))
	assert.Equal(t, []string{tsk.ID}, list(t, e.token(t, e.teacher)))
	assert.Equal(t, []string{}, list(t, e.token(t, e.teacher2)))
	assert.Equal(t, []string{tsk.ID}, list(t, e.token(t, e.student)))
	assert.Equal(t, []string{tsk.ID, own.ID}, list(t, e.token(t, e.student2)))

	tests := []httpTest{
		{name: "shared student reads", path: path, token: e.token(t, e.student2), wantCode: http.StatusOK},
		{name: "other teacher cannot read", path: path, token: e.token(t, e.teacher2), wantCode: http.StatusForbidden, wantData: denied},
		{
			name: "shared student cannot complete", method: http.MethodPut, path: path, token: e.token(t, e.student2), body: done,
			wantCode: http.StatusForbidden, wantData: denied,
		},
		{
			name: "other teacher cannot update", method: http.MethodPut, path: path, token: e.token(t, e.teacher2), body: done,
			wantCode: http.StatusForbidden, wantData: denied,
		},
		{
			name: "other teacher cannot delete", method: http.MethodDelete, path: path, token: e.token(t, e.teacher2),
			wantCode: http.StatusForbidden, wantData: denied,
		},
		{
			name: "invalid priority", method: http.MethodPut, path: path, token: e.token(t, e.teacher),
			body: marchallObj(t, echo.Map{"priority": "urgent"}), wantCode: http.StatusBadRequest,
			wantData: failure(t, "validation failed", map[string]string{"priority": "priority must be one of low, medium or high"}),
		},
		{
			name: "unknown task", method: http.MethodPut, path: "/api/tasks/missing", token: e.token(t, e.admin), body: done,
			wantCode: http.StatusNotFound, wantData: failure(t, "task not found"),
		},
		{
			name: "delete unknown task", method: http.MethodDelete, path: "/api/tasks/missing", token: e.token(t, e.admin),
			wantCode: http.StatusNotFound, wantData: failure(t, "task not found"),
		},
	}
	runHTTPTests(t, e, tests)

	// nothing was mutated by the failed requests
	stored, err := e.repos.Tasks.GetTask(ctx, tsk.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)
	all, err := e.repos.Tasks.QueryTasks(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	t.Run("owner completes", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodPut, path: path, token: e.token(t, e.student), body: done})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res tasksResponse
		decode(t, rec, &res)
		assert.True(t, res.Task.Completed)
		assert.Equal(t, "Essay", res.Task.Title)
	})

	t.Run("creator deletes", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodDelete, path: path, token: e.token(t, e.teacher)})
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: success(t, nil)}, rec)
		rec = e.do(t, httpTest{path: path, token: e.token(t, e.admin)})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_taskApi_share(t *testing.T) {
	e := setup(t)
	tsk := testutil.CreateTask(t, e.repos.Tasks, "Essay", "2024-06-01", e.student, e.teacher)
	path := "/api/tasks/" + tsk.ID + "/share"
	teacherToken := e.token(t, e.teacher)

	share := func(ids ...string) []byte { return marchallObj(t, echo.Map{"studentIds": ids}) }
	unshare := func(id string) []byte { return marchallObj(t, echo.Map{"studentId": id}) }
	sharedWith := func(t *testing.T, rec *httptest.ResponseRecorder) []string {
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res tasksResponse
		decode(t, rec, &res)
		return res.Task.SharedWith
	}

	tests := []httpTest{
		{
			name: "empty list", method: http.MethodPost, path: path, token: teacherToken, body: share(),
			wantCode: http.StatusBadRequest, wantData: failure(t, "studentIds: this field is required", map[string]string{"studentIds": "this field is required"}),
		},
		{name: "unknown task", method: http.MethodPost, path: "/api/tasks/missing/share", token: teacherToken, body: share(e.student2.ID), wantCode: http.StatusNotFound},
		{name: "students cannot share", method: http.MethodPost, path: path, token: e.token(t, e.student), body: share(e.student2.ID), wantCode: http.StatusForbidden},
		{name: "other teacher cannot share", method: http.MethodPost, path: path, token: e.token(t, e.teacher2), body: share(e.student2.ID), wantCode: http.StatusForbidden},
		{name: "targets must be students", method: http.MethodPost, path: path, token: teacherToken, body: share(e.student2.ID, e.teacher2.ID), wantCode: http.StatusBadRequest},
		{name: "unshare needs an id", method: http.MethodDelete, path: path, token: teacherToken, body: []byte(`{}`), wantCode: http.StatusBadRequest},
	}
	runHTTPTests(t, e, tests)

	got := sharedWith(t, e.do(t, httpTest{method: http.MethodPost, path: path, token: teacherToken, body: share(e.student2.ID)}))
	assert.Equal(t, []string{e.student2.ID}, got)

	// sharing again is idempotent
	got = sharedWith(t, e.do(t, httpTest{method: http.MethodPost, path: path, token: e.token(t, e.admin), body: share(e.student2.ID, e.student2.ID)}))
	assert.Equal(t, []string{e.student2.ID}, got)

	// unsharing an absent id is a no-op
	got = sharedWith(t, e.do(t, httpTest{method: http.MethodDelete, path: path, token: teacherToken, body: unshare(e.teacher2.ID)}))
	assert.Equal(t, []string{e.student2.ID}, got)

	got = sharedWith(t, e.do(t, httpTest{method: http.MethodDelete, path: path, token: teacherToken, body: unshare(e.student2.ID)}))
	assert.Equal(t, []string{}, got)
}
