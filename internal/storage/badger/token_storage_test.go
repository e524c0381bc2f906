package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbela/task-with-api-notification/internal/auth"
	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

func newTestTokenStorage(t *testing.T) *tokenStorage {
	t.Helper()

	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewTokenStorage(store, common.NewSilentLogger())
}

func liveToken(token, userID string) *models.RefreshToken {
	return &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestTokenStorage_SaveAndGet(t *testing.T) {
	s := newTestTokenStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, liveToken("t1", "u1")))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.Revoked)

	missing, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTokenStorage_Rotate(t *testing.T) {
	s := newTestTokenStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, liveToken("old", "u1")))

	require.NoError(t, s.Rotate(ctx, "old", liveToken("new", "u1")))

	old, err := s.Get(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.True(t, old.Revoked)
	assert.Equal(t, "new", old.ReplacedByToken)

	replacement, err := s.Get(ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, replacement)
	assert.False(t, replacement.Revoked)
}

func TestTokenStorage_RotateRevokedLeavesNoReplacement(t *testing.T) {
	s := newTestTokenStorage(t)
	ctx := context.Background()

	revoked := liveToken("old", "u1")
	revoked.Revoked = true
	require.NoError(t, s.Save(ctx, revoked))

	err := s.Rotate(ctx, "old", liveToken("new", "u1"))
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	// The transaction rolled back: no replacement was written.
	replacement, err := s.Get(ctx, "new")
	require.NoError(t, err)
	assert.Nil(t, replacement)
}

func TestTokenStorage_RotateUnknown(t *testing.T) {
	s := newTestTokenStorage(t)

	err := s.Rotate(context.Background(), "missing", liveToken("new", "u1"))
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
}

func TestTokenStorage_RevokeAllForUser(t *testing.T) {
	s := newTestTokenStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, liveToken("a", "u1")))
	require.NoError(t, s.Save(ctx, liveToken("b", "u1")))
	require.NoError(t, s.Save(ctx, liveToken("c", "u2")))

	revoked, err := s.RevokeAllForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, revoked)

	other, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.False(t, other.Revoked)
}

func TestTokenStorage_DeleteExpired(t *testing.T) {
	s := newTestTokenStorage(t)
	ctx := context.Background()

	stale := liveToken("stale", "u1")
	stale.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.Save(ctx, stale))

	dead := liveToken("dead", "u1")
	dead.Revoked = true
	require.NoError(t, s.Save(ctx, dead))

	require.NoError(t, s.Save(ctx, liveToken("fresh", "u1")))

	deleted, err := s.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	for _, token := range []string{"stale", "dead"} {
		gone, err := s.Get(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, gone, token)
	}

	kept, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
