// Package interfaces defines the storage contracts implemented by the
// badger-backed stores.
package interfaces

import (
	"context"
	"time"

	"github.com/hbela/task-with-api-notification/internal/models"
)

// StorageManager aggregates the entity stores behind a single handle.
type StorageManager interface {
	Users() UserStore
	RefreshTokens() RefreshTokenStore
	Tasks() TaskStore
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// RefreshTokenStore persists refresh tokens and performs the single-use
// rotation. Rotate must revoke the old token and insert its replacement
// atomically.
type RefreshTokenStore interface {
	Save(ctx context.Context, token *models.RefreshToken) error
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, old string, replacement *models.RefreshToken) error
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// TaskStore persists tasks scoped to their owning user.
type TaskStore interface {
	Save(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	List(ctx context.Context, userID string, filter *models.TaskFilter) ([]*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}
