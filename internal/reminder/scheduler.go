package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

// DefaultOffsets are the minutes-before-due reminders used when a task
// does not carry its own: one hour and one day ahead.
var DefaultOffsets = []int{60, 1440}

// Scheduler plans task reminders and the daily summary against a
// Notifier.
type Scheduler struct {
	notifier       Notifier
	logger         *common.Logger
	defaultOffsets []int
	now            func() time.Time
}

// SchedulerOption configures the scheduler
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithDefaultOffsets overrides the reminder offsets applied to tasks
// without their own.
func WithDefaultOffsets(offsets []int) SchedulerOption {
	return func(s *Scheduler) {
		s.defaultOffsets = offsets
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a reminder scheduler over the given notifier.
func NewScheduler(notifier Notifier, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		notifier:       notifier,
		logger:         common.NewSilentLogger(),
		defaultOffsets: DefaultOffsets,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleForTask schedules reminders for one task. Tasks without a due
// date, already due, or completed get none. Offsets whose trigger time
// is already past are skipped individually. Returns the IDs of the
// notifications scheduled.
func (s *Scheduler) ScheduleForTask(ctx context.Context, task *models.Task) ([]string, error) {
	if task.DueDate == nil || task.Completed {
		return nil, nil
	}

	now := s.now()
	due := *task.DueDate
	if !due.After(now) {
		return nil, nil
	}

	offsets := task.ReminderOffsets
	if offsets == nil {
		offsets = s.defaultOffsets
	}

	var ids []string
	for _, offset := range offsets {
		if offset < 0 {
			continue
		}
		trigger := due.Add(-time.Duration(offset) * time.Minute)
		if !trigger.After(now) {
			continue
		}

		req := &models.NotificationRequest{
			Title: reminderTitle(offset),
			Body:  task.Title,
			Data: models.NotificationData{
				Type:          models.NotificationTypeTaskReminder,
				TaskID:        task.ID,
				OffsetMinutes: offset,
				DueDate:       &due,
			},
			TriggerAt: trigger,
		}
		id, err := s.notifier.Schedule(ctx, req)
		if err != nil {
			// One offset failing must not block the others.
			s.logger.Warn().Err(err).
				Str("task_id", task.ID).
				Int("offset_minutes", offset).
				Msg("Failed to schedule reminder")
			continue
		}
		ids = append(ids, id)
	}

	s.logger.Debug().
		Str("task_id", task.ID).
		Int("scheduled", len(ids)).
		Msg("Task reminders scheduled")
	return ids, nil
}

// CancelForTask cancels every pending reminder tagged with the task ID.
// Per-item cancel failures are logged and skipped. Returns how many
// were cancelled.
func (s *Scheduler) CancelForTask(ctx context.Context, taskID string) (int, error) {
	pending, err := s.notifier.Scheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list scheduled notifications: %w", err)
	}

	cancelled := 0
	for _, n := range pending {
		data := n.Request.Data
		if data.Type != models.NotificationTypeTaskReminder || data.TaskID != taskID {
			continue
		}
		if err := s.notifier.Cancel(ctx, n.ID); err != nil {
			s.logger.Warn().Err(err).Str("notification_id", n.ID).Msg("Failed to cancel notification")
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// RescheduleForTask replaces a task's reminders: cancel everything tagged
// with the task, then schedule from its current state.
func (s *Scheduler) RescheduleForTask(ctx context.Context, task *models.Task) ([]string, error) {
	if _, err := s.CancelForTask(ctx, task.ID); err != nil {
		return nil, err
	}
	return s.ScheduleForTask(ctx, task)
}

// RescheduleAll rebuilds the full reminder set: every pending task
// reminder is cancelled, then each task is scheduled fresh. The daily
// summary is left alone.
func (s *Scheduler) RescheduleAll(ctx context.Context, tasks []*models.Task) error {
	pending, err := s.notifier.Scheduled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scheduled notifications: %w", err)
	}
	for _, n := range pending {
		if n.Request.Data.Type != models.NotificationTypeTaskReminder {
			continue
		}
		if err := s.notifier.Cancel(ctx, n.ID); err != nil {
			s.logger.Warn().Err(err).Str("notification_id", n.ID).Msg("Failed to cancel notification")
		}
	}

	scheduled := 0
	for _, task := range tasks {
		ids, err := s.ScheduleForTask(ctx, task)
		if err != nil {
			return err
		}
		scheduled += len(ids)
	}

	s.logger.Info().
		Int("tasks", len(tasks)).
		Int("scheduled", scheduled).
		Msg("Reminders rescheduled")
	return nil
}

// ScheduleDailySummary schedules the recurring daily overview
// notification, first firing at the next occurrence of hour:minute
// local time and re-arming every day after. Any existing pending
// summary is cancelled first, so at most one is ever pending.
func (s *Scheduler) ScheduleDailySummary(ctx context.Context, hour, minute int) (string, error) {
	pending, err := s.notifier.Scheduled(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list scheduled notifications: %w", err)
	}
	for _, n := range pending {
		if n.Request.Data.Type != models.NotificationTypeDailySummary {
			continue
		}
		if err := s.notifier.Cancel(ctx, n.ID); err != nil {
			s.logger.Warn().Err(err).Str("notification_id", n.ID).Msg("Failed to cancel notification")
		}
	}

	now := s.now()
	trigger := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !trigger.After(now) {
		trigger = trigger.Add(24 * time.Hour)
	}

	req := &models.NotificationRequest{
		Title:        "Today's tasks",
		Body:         "Check what's due today",
		Data:         models.NotificationData{Type: models.NotificationTypeDailySummary},
		TriggerAt:    trigger,
		RepeatsDaily: true,
	}
	id, err := s.notifier.Schedule(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to schedule daily summary: %w", err)
	}

	s.logger.Debug().Time("trigger", trigger).Msg("Daily summary scheduled")
	return id, nil
}
