package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

type userStorage struct {
	store  *Store
	logger *common.Logger
}

// NewUserStorage creates a new user store backed by BadgerHold.
func NewUserStorage(store *Store, logger *common.Logger) *userStorage {
	return &userStorage{store: store, logger: logger}
}

func (s *userStorage) Save(_ context.Context, user *models.User) error {
	if err := s.store.db.Upsert(user.ID, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	s.logger.Debug().Str("user_id", user.ID).Msg("User saved")
	return nil
}

func (s *userStorage) GetByID(_ context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.store.db.Get(id, &user)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", id, err)
	}
	return &user, nil
}

func (s *userStorage) GetByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return s.findOne(badgerhold.Where("GoogleID").Eq(googleID))
}

func (s *userStorage) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findOne(badgerhold.Where("Email").Eq(email))
}

func (s *userStorage) findOne(query *badgerhold.Query) (*models.User, error) {
	var user models.User
	err := s.store.db.FindOne(&user, query)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
