package models

import "time"

// Notification types used to tag scheduled local notifications so they
// can be found and cancelled as a group.
const (
	NotificationTypeTaskReminder = "task-reminder"
	NotificationTypeDailySummary = "daily-summary"
)

// NotificationRequest describes a local notification to be scheduled
// with the platform notifier. When RepeatsDaily is set the notifier
// re-arms the notification every day at TriggerAt's time of day.
type NotificationRequest struct {
	Title        string           `json:"title"`
	Body         string           `json:"body"`
	Data         NotificationData `json:"data"`
	TriggerAt    time.Time        `json:"triggerAt"`
	RepeatsDaily bool             `json:"repeatsDaily,omitempty"`
}

// NotificationData is the tag payload attached to every scheduled
// notification. Type is always set; TaskID, OffsetMinutes and DueDate
// are only meaningful for task reminders.
type NotificationData struct {
	Type          string     `json:"type"`
	TaskID        string     `json:"taskId,omitempty"`
	OffsetMinutes int        `json:"offsetMinutes,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
}

// ScheduledNotification is a notification already registered with the
// platform, identified by the platform-assigned ID.
type ScheduledNotification struct {
	ID      string               `json:"id"`
	Request *NotificationRequest `json:"request"`
}
