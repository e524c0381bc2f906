// Package reminder schedules local notifications for task due dates.
package reminder

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hbela/task-with-api-notification/internal/models"
)

// Notifier is the platform notification facility: schedule a local
// notification, cancel one by ID, and list everything still pending.
// Requests flagged RepeatsDaily stay pending after each fire and re-arm
// for the next day.
type Notifier interface {
	Schedule(ctx context.Context, req *models.NotificationRequest) (string, error)
	Cancel(ctx context.Context, id string) error
	Scheduled(ctx context.Context) ([]*models.ScheduledNotification, error)
}

// MemoryNotifier is an in-process Notifier. It backs tests and
// headless environments without a platform notification service.
type MemoryNotifier struct {
	mu      sync.Mutex
	pending map[string]*models.ScheduledNotification
}

// NewMemoryNotifier creates an empty in-memory notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{pending: make(map[string]*models.ScheduledNotification)}
}

func (n *MemoryNotifier) Schedule(_ context.Context, req *models.NotificationRequest) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New().String()
	r := *req
	n.pending[id] = &models.ScheduledNotification{ID: id, Request: &r}
	return id, nil
}

func (n *MemoryNotifier) Cancel(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.pending, id)
	return nil
}

func (n *MemoryNotifier) Scheduled(_ context.Context) ([]*models.ScheduledNotification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := make([]*models.ScheduledNotification, 0, len(n.pending))
	for _, s := range n.pending {
		result = append(result, s)
	}
	return result, nil
}
