package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

const taskNotFoundCode = "TASK_NOT_FOUND"

// taskRequest is the payload for task create and update. Pointer fields
// distinguish "absent" from "zero" on partial updates.
type taskRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Completed       *bool      `json:"completed"`
	Priority        *string    `json:"priority"`
	DueDate         *time.Time `json:"dueDate"`
	ClearDueDate    bool       `json:"clearDueDate,omitempty"`
	ReminderOffsets []int      `json:"reminderOffsets"`
}

// handleTasks handles GET and POST /api/tasks.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleTaskList(w, r)
	case http.MethodPost:
		s.handleTaskCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTaskByID dispatches /api/tasks/{id}.
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/tasks/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "task id is required in path")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleTaskGet(w, r, id)
	case http.MethodPut, http.MethodPatch:
		s.handleTaskUpdate(w, r, id)
	case http.MethodDelete:
		s.handleTaskDelete(w, r, id)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	identity := common.IdentityFromContext(r.Context())

	filter := &models.TaskFilter{}
	q := r.URL.Query()
	if v := q.Get("completed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Completed = &b
		}
	}
	if v := q.Get("priority"); v != "" {
		filter.Priority = v
	}
	if v := q.Get("dueBefore"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DueBefore = &t
		}
	}
	if v := q.Get("dueAfter"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DueAfter = &t
		}
	}
	if v := q.Get("sort"); v != "" {
		if !models.ValidSort(v) {
			WriteError(w, http.StatusBadRequest, "sort must be createdAt, dueDate or priority")
			return
		}
		filter.Sort = v
	}

	tasks, err := s.app.Storage.Tasks().List(r.Context(), identity.UserID, filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	identity := common.IdentityFromContext(r.Context())

	var req taskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Title == nil || *req.Title == "" {
		WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Priority != nil && *req.Priority != "" && !models.ValidPriority(*req.Priority) {
		WriteError(w, http.StatusBadRequest, "priority must be low, medium, high or urgent")
		return
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		Title:     *req.Title,
		Priority:  models.DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.Priority != nil && *req.Priority != "" {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.ReminderOffsets != nil {
		task.ReminderOffsets = req.ReminderOffsets
	}

	if err := s.app.Storage.Tasks().Save(r.Context(), task); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to save task")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{"task": task})
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request, id string) {
	identity := common.IdentityFromContext(r.Context())

	task, err := s.app.Storage.Tasks().Get(r.Context(), identity.UserID, id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load task")
		return
	}
	if task == nil {
		WriteErrorWithCode(w, http.StatusNotFound, "Task not found", taskNotFoundCode)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"task": task})
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request, id string) {
	identity := common.IdentityFromContext(r.Context())

	task, err := s.app.Storage.Tasks().Get(r.Context(), identity.UserID, id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load task")
		return
	}
	if task == nil {
		WriteErrorWithCode(w, http.StatusNotFound, "Task not found", taskNotFoundCode)
		return
	}

	var req taskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Priority != nil && *req.Priority != "" && !models.ValidPriority(*req.Priority) {
		WriteError(w, http.StatusBadRequest, "priority must be low, medium, high or urgent")
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			WriteError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.ClearDueDate {
		task.DueDate = nil
	} else if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.ReminderOffsets != nil {
		task.ReminderOffsets = req.ReminderOffsets
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.app.Storage.Tasks().Save(r.Context(), task); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to save task")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"task": task})
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request, id string) {
	identity := common.IdentityFromContext(r.Context())

	task, err := s.app.Storage.Tasks().Get(r.Context(), identity.UserID, id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load task")
		return
	}
	if task == nil {
		WriteErrorWithCode(w, http.StatusNotFound, "Task not found", taskNotFoundCode)
		return
	}

	if err := s.app.Storage.Tasks().Delete(r.Context(), identity.UserID, id); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
