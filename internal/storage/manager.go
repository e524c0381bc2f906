// Package storage provides the top-level StorageManager over the
// embedded badger database.
package storage

import (
	"fmt"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/interfaces"
	"github.com/hbela/task-with-api-notification/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single badger
// store shared by the entity stores.
type Manager struct {
	store  *badger.Store
	users  interfaces.UserStore
	tokens interfaces.RefreshTokenStore
	tasks  interfaces.TaskStore
	logger *common.Logger
}

// NewManager opens the database and wires the entity stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:  store,
		users:  badger.NewUserStorage(store, logger),
		tokens: badger.NewTokenStorage(store, logger),
		tasks:  badger.NewTaskStorage(store, logger),
		logger: logger,
	}, nil
}

func (m *Manager) Users() interfaces.UserStore {
	return m.users
}

func (m *Manager) RefreshTokens() interfaces.RefreshTokenStore {
	return m.tokens
}

func (m *Manager) Tasks() interfaces.TaskStore {
	return m.tasks
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
