package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbela/task-with-api-notification/internal/models"
)

func createTask(t *testing.T, srv *Server, token string, payload map[string]interface{}) *models.Task {
	t.Helper()

	rec := doRequest(srv, http.MethodPost, "/api/tasks", jsonBody(t, payload), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Task *models.Task `json:"task"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Task
}

func TestTaskCreateAndGet(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	task := createTask(t, srv, session.AccessToken, map[string]interface{}{
		"title":           "Write report",
		"description":     "Quarterly numbers",
		"priority":        "high",
		"dueDate":         due.Format(time.RFC3339),
		"reminderOffsets": []int{30, 60},
	})

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "high", task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, due.Unix(), task.DueDate.Unix())
	assert.Equal(t, []int{30, 60}, task.ReminderOffsets)

	rec := doRequest(srv, http.MethodGet, "/api/tasks/"+task.ID, nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestTaskCreate_Validation(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	rec := doRequest(srv, http.MethodPost, "/api/tasks", jsonBody(t, map[string]interface{}{}), session.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/tasks", jsonBody(t, map[string]interface{}{
		"title":    "x",
		"priority": "critical",
	}), session.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskCreate_DefaultPriority(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	task := createTask(t, srv, session.AccessToken, map[string]interface{}{"title": "no priority"})
	assert.Equal(t, models.PriorityMedium, task.Priority)
}

func TestTaskList_Filters(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	createTask(t, srv, session.AccessToken, map[string]interface{}{"title": "open", "priority": "low"})
	createTask(t, srv, session.AccessToken, map[string]interface{}{"title": "done", "completed": true})

	rec := doRequest(srv, http.MethodGet, "/api/tasks?completed=false", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tasks []*models.Task `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "open", resp.Tasks[0].Title)
}

func TestTaskList_SortByPriority(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	createTask(t, srv, session.AccessToken, map[string]interface{}{"title": "someday", "priority": "low"})
	createTask(t, srv, session.AccessToken, map[string]interface{}{"title": "now", "priority": "urgent"})

	rec := doRequest(srv, http.MethodGet, "/api/tasks?sort=priority", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tasks []*models.Task `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, "now", resp.Tasks[0].Title)
	assert.Equal(t, "someday", resp.Tasks[1].Title)

	rec = doRequest(srv, http.MethodGet, "/api/tasks?sort=alphabetical", nil, session.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskUpdate_Partial(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	task := createTask(t, srv, session.AccessToken, map[string]interface{}{
		"title":       "original",
		"description": "keep me",
	})

	rec := doRequest(srv, http.MethodPatch, "/api/tasks/"+task.ID, jsonBody(t, map[string]interface{}{
		"completed": true,
	}), session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Task *models.Task `json:"task"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Task.Completed)
	assert.Equal(t, "original", resp.Task.Title)
	assert.Equal(t, "keep me", resp.Task.Description)
}

func TestTaskDelete(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	task := createTask(t, srv, session.AccessToken, map[string]interface{}{"title": "temp"})

	rec := doRequest(srv, http.MethodDelete, "/api/tasks/"+task.ID, nil, session.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/tasks/"+task.ID, nil, session.AccessToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, taskNotFoundCode, decodeError(t, rec).Code)
}

func TestTask_NotFound(t *testing.T) {
	srv := newTestServer(t)
	session := login(t, srv)

	rec := doRequest(srv, http.MethodGet, "/api/tasks/no-such-task", nil, session.AccessToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, taskNotFoundCode, decodeError(t, rec).Code)
}

func TestTask_ScopedToOwner(t *testing.T) {
	verifier := &stubVerifier{identity: defaultIdentity()}
	srv := newTestServerWith(t, verifier, nil)

	alice := login(t, srv)
	task := createTask(t, srv, alice.AccessToken, map[string]interface{}{"title": "private"})

	// A second account cannot see Alice's task.
	verifier.identity = &models.GoogleIdentity{
		GoogleID: "google-sub-2",
		Email:    "bob@example.com",
		Name:     "Bob",
	}
	bob := login(t, srv)

	rec := doRequest(srv, http.MethodGet, "/api/tasks/"+task.ID, nil, bob.AccessToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, taskNotFoundCode, decodeError(t, rec).Code)

	rec = doRequest(srv, http.MethodGet, "/api/tasks", nil, bob.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tasks []*models.Task `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Tasks)
}
