package client

import (
	"context"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
	"github.com/hbela/task-with-api-notification/internal/reminder"
)

// TaskManager pairs the API client with the reminder scheduler so local
// reminders track server-side task changes: schedule on create,
// reschedule on update, cancel on delete. Scheduling failures are
// logged and never fail the API call that triggered them.
type TaskManager struct {
	client    *Client
	scheduler *reminder.Scheduler
	logger    *common.Logger
}

// NewTaskManager creates a task manager over an authenticated client.
func NewTaskManager(client *Client, scheduler *reminder.Scheduler, logger *common.Logger) *TaskManager {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &TaskManager{client: client, scheduler: scheduler, logger: logger}
}

// CreateTask creates the task on the server and schedules reminders for
// it when it has a due date.
func (m *TaskManager) CreateTask(ctx context.Context, req *TaskRequest) (*models.Task, error) {
	task, err := m.client.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := m.scheduler.ScheduleForTask(ctx, task); err != nil {
		m.logger.Warn().Err(err).Str("task_id", task.ID).Msg("Failed to schedule reminders")
	}
	return task, nil
}

// UpdateTask applies the update on the server and rebuilds the task's
// reminders from its new state. Completing a task or clearing its due
// date drops its reminders.
func (m *TaskManager) UpdateTask(ctx context.Context, id string, req *TaskRequest) (*models.Task, error) {
	task, err := m.client.UpdateTask(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if _, err := m.scheduler.RescheduleForTask(ctx, task); err != nil {
		m.logger.Warn().Err(err).Str("task_id", task.ID).Msg("Failed to reschedule reminders")
	}
	return task, nil
}

// DeleteTask removes the task on the server and cancels its reminders.
func (m *TaskManager) DeleteTask(ctx context.Context, id string) error {
	if err := m.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	if _, err := m.scheduler.CancelForTask(ctx, id); err != nil {
		m.logger.Warn().Err(err).Str("task_id", id).Msg("Failed to cancel reminders")
	}
	return nil
}

// SyncReminders fetches the full task list and rebuilds every pending
// task reminder from it. Used on app start and after reconnecting.
func (m *TaskManager) SyncReminders(ctx context.Context) error {
	tasks, err := m.client.ListTasks(ctx, nil)
	if err != nil {
		return err
	}
	return m.scheduler.RescheduleAll(ctx, tasks)
}
