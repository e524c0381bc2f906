package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hbela/task-with-api-notification/internal/models"
)

// TaskRequest is the payload for task create and update. Nil fields are
// left unchanged on update.
type TaskRequest struct {
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Completed       *bool      `json:"completed,omitempty"`
	Priority        *string    `json:"priority,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	ClearDueDate    bool       `json:"clearDueDate,omitempty"`
	ReminderOffsets []int      `json:"reminderOffsets,omitempty"`
}

type taskResponse struct {
	Task *models.Task `json:"task"`
}

type taskListResponse struct {
	Tasks []*models.Task `json:"tasks"`
}

// ListTasks returns the user's tasks, optionally narrowed by filter.
func (c *Client) ListTasks(ctx context.Context, filter *models.TaskFilter) ([]*models.Task, error) {
	path := "/api/tasks"
	if q := encodeFilter(filter); q != "" {
		path += "?" + q
	}

	var resp taskListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask creates a task and returns the stored record.
func (c *Client) CreateTask(ctx context.Context, req *TaskRequest) (*models.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &resp); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// GetTask returns one task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// UpdateTask applies a partial update and returns the stored record.
func (c *Client) UpdateTask(ctx context.Context, id string, req *TaskRequest) (*models.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// Me fetches the authenticated user from the server.
func (c *Client) Me(ctx context.Context) (*models.PublicUser, error) {
	var resp struct {
		User *models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// EndAllSessions revokes every refresh token for the account.
func (c *Client) EndAllSessions(ctx context.Context) (int, error) {
	var resp struct {
		Revoked int `json:"revoked"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/auth/sessions", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Revoked, nil
}

func encodeFilter(filter *models.TaskFilter) string {
	if filter == nil {
		return ""
	}
	q := url.Values{}
	if filter.Completed != nil {
		q.Set("completed", strconv.FormatBool(*filter.Completed))
	}
	if filter.Priority != "" {
		q.Set("priority", filter.Priority)
	}
	if filter.DueBefore != nil {
		q.Set("dueBefore", filter.DueBefore.Format(time.RFC3339))
	}
	if filter.DueAfter != nil {
		q.Set("dueAfter", filter.DueAfter.Format(time.RFC3339))
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}
	return q.Encode()
}
