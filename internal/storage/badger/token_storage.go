package badger

import (
	"context"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/hbela/task-with-api-notification/internal/auth"
	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

type tokenStorage struct {
	store  *Store
	logger *common.Logger
}

// NewTokenStorage creates a new refresh token store backed by BadgerHold.
func NewTokenStorage(store *Store, logger *common.Logger) *tokenStorage {
	return &tokenStorage{store: store, logger: logger}
}

func (s *tokenStorage) Save(_ context.Context, token *models.RefreshToken) error {
	if err := s.store.db.Insert(token.Token, token); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (s *tokenStorage) Get(_ context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := s.store.db.Get(token, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &record, nil
}

// Rotate revokes the old token, links it to its replacement and inserts
// the replacement inside one badger transaction. Either both records
// change or neither does.
func (s *tokenStorage) Rotate(_ context.Context, old string, replacement *models.RefreshToken) error {
	err := s.store.db.Badger().Update(func(tx *badgerdb.Txn) error {
		var record models.RefreshToken
		if err := s.store.db.TxGet(tx, old, &record); err != nil {
			if err == badgerhold.ErrNotFound {
				return auth.ErrTokenNotFound
			}
			return err
		}
		if record.Revoked {
			return auth.ErrTokenRevoked
		}
		record.Revoked = true
		record.ReplacedByToken = replacement.Token
		if err := s.store.db.TxUpdate(tx, old, &record); err != nil {
			return err
		}
		return s.store.db.TxInsert(tx, replacement.Token, replacement)
	})
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return nil
}

func (s *tokenStorage) Revoke(_ context.Context, token string) error {
	var record models.RefreshToken
	err := s.store.db.Get(token, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return auth.ErrTokenNotFound
		}
		return fmt.Errorf("failed to get refresh token: %w", err)
	}
	if record.Revoked {
		return nil
	}
	record.Revoked = true
	if err := s.store.db.Update(token, &record); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *tokenStorage) RevokeAllForUser(_ context.Context, userID string) (int, error) {
	var records []models.RefreshToken
	query := badgerhold.Where("UserID").Eq(userID).And("Revoked").Eq(false)
	if err := s.store.db.Find(&records, query); err != nil {
		return 0, fmt.Errorf("failed to list user tokens: %w", err)
	}
	revoked := 0
	for i := range records {
		records[i].Revoked = true
		if err := s.store.db.Update(records[i].Token, &records[i]); err != nil {
			return revoked, fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		revoked++
	}
	return revoked, nil
}

// DeleteExpired removes tokens that can never be redeemed again:
// expired ones and revoked ones.
func (s *tokenStorage) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	var records []models.RefreshToken
	query := badgerhold.Where("ExpiresAt").Lt(before).Or(badgerhold.Where("Revoked").Eq(true))
	if err := s.store.db.Find(&records, query); err != nil {
		return 0, fmt.Errorf("failed to list defunct tokens: %w", err)
	}
	deleted := 0
	for i := range records {
		if err := s.store.db.Delete(records[i].Token, models.RefreshToken{}); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return deleted, fmt.Errorf("failed to delete defunct token: %w", err)
		}
		deleted++
	}
	if deleted > 0 {
		s.logger.Debug().Int("deleted", deleted).Msg("Defunct refresh tokens removed")
	}
	return deleted, nil
}
