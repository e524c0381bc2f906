package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

type taskStorage struct {
	store  *Store
	logger *common.Logger
}

// NewTaskStorage creates a new task store backed by BadgerHold.
func NewTaskStorage(store *Store, logger *common.Logger) *taskStorage {
	return &taskStorage{store: store, logger: logger}
}

func (s *taskStorage) Save(_ context.Context, task *models.Task) error {
	if err := s.store.db.Upsert(task.ID, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	s.logger.Debug().Str("task_id", task.ID).Str("user_id", task.UserID).Msg("Task saved")
	return nil
}

func (s *taskStorage) Get(_ context.Context, userID, id string) (*models.Task, error) {
	var task models.Task
	err := s.store.db.Get(id, &task)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task '%s': %w", id, err)
	}
	// Ownership check: a task belonging to another user is not found.
	if task.UserID != userID {
		return nil, nil
	}
	return &task, nil
}

func (s *taskStorage) List(_ context.Context, userID string, filter *models.TaskFilter) ([]*models.Task, error) {
	var tasks []models.Task
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID")
	if err := s.store.db.Find(&tasks, query); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	result := make([]*models.Task, 0, len(tasks))
	for i := range tasks {
		if matchesFilter(&tasks[i], filter) {
			result = append(result, &tasks[i])
		}
	}

	sortTasks(result, sortOrder(filter))
	return result, nil
}

func sortOrder(filter *models.TaskFilter) string {
	if filter == nil {
		return ""
	}
	return filter.Sort
}

func sortTasks(tasks []*models.Task, order string) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch order {
		case models.SortCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case models.SortPriority:
			if ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority); ra != rb {
				return ra < rb
			}
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			// Due-dated tasks first by due date, then the rest by creation time.
			switch {
			case a.DueDate != nil && b.DueDate != nil:
				return a.DueDate.Before(*b.DueDate)
			case a.DueDate != nil:
				return true
			case b.DueDate != nil:
				return false
			default:
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
	})
}

func (s *taskStorage) Delete(ctx context.Context, userID, id string) error {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	if err := s.store.db.Delete(id, models.Task{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete task '%s': %w", id, err)
	}
	s.logger.Debug().Str("task_id", id).Str("user_id", userID).Msg("Task deleted")
	return nil
}

func matchesFilter(task *models.Task, filter *models.TaskFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Completed != nil && task.Completed != *filter.Completed {
		return false
	}
	if filter.Priority != "" && task.Priority != filter.Priority {
		return false
	}
	if filter.DueBefore != nil && (task.DueDate == nil || !task.DueDate.Before(*filter.DueBefore)) {
		return false
	}
	if filter.DueAfter != nil && (task.DueDate == nil || !task.DueDate.After(*filter.DueAfter)) {
		return false
	}
	return true
}
