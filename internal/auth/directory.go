package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hbela/task-with-api-notification/internal/interfaces"
	"github.com/hbela/task-with-api-notification/internal/models"
)

// Directory resolves verified Google identities to local user accounts,
// creating or updating records as needed.
type Directory struct {
	users interfaces.UserStore
	now   func() time.Time
}

// NewDirectory creates a directory over the given user store.
func NewDirectory(users interfaces.UserStore) *Directory {
	return &Directory{users: users, now: time.Now}
}

// FindOrCreate upserts the account for a verified Google identity.
// Lookup is by Google subject first, then by email so an account created
// before Google sign-in gets linked instead of duplicated. Profile
// fields and LastLogin are refreshed on every call.
func (d *Directory) FindOrCreate(ctx context.Context, identity *models.GoogleIdentity) (*models.User, error) {
	now := d.now().UTC()

	user, err := d.users.GetByGoogleID(ctx, identity.GoogleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by google id: %w", err)
	}

	if user == nil {
		user, err = d.users.GetByEmail(ctx, identity.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
		if user != nil {
			user.GoogleID = identity.GoogleID
		}
	}

	if user == nil {
		user = &models.User{
			ID:        uuid.New().String(),
			GoogleID:  identity.GoogleID,
			Email:     identity.Email,
			CreatedAt: now,
		}
	}

	user.Email = identity.Email
	user.Name = identity.Name
	user.Avatar = identity.Avatar
	user.LastLogin = now

	if err := d.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}
