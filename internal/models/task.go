package models

import "time"

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// DefaultPriority is applied when a task is created without one.
const DefaultPriority = PriorityMedium

// Task list sort orders.
const (
	SortCreatedAt = "createdAt"
	SortDueDate   = "dueDate"
	SortPriority  = "priority"
)

// Task is a user-owned task item. DueDate is optional; ReminderOffsets
// are minutes-before-due at which local reminders fire (nil means the
// client default applies).
type Task struct {
	ID              string     `json:"id" badgerhold:"key"`
	UserID          string     `json:"userId" badgerhold:"index"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Completed       bool       `json:"completed"`
	Priority        string     `json:"priority,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	ReminderOffsets []int      `json:"reminderOffsets,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ValidPriority reports whether p is one of the recognized priority values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// PriorityRank orders priorities for sorting, highest urgency first.
// Unknown values sort last.
func PriorityRank(p string) int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// ValidSort reports whether s is a recognized task sort order.
func ValidSort(s string) bool {
	switch s {
	case SortCreatedAt, SortDueDate, SortPriority:
		return true
	}
	return false
}

// TaskFilter narrows and orders task listings. An empty Sort means
// SortDueDate behavior: due-dated tasks first, the rest by creation time.
type TaskFilter struct {
	Completed *bool
	Priority  string
	DueBefore *time.Time
	DueAfter  *time.Time
	Sort      string
}
