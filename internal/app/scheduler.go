package app

import (
	"context"
	"time"

	"github.com/hbela/task-with-api-notification/internal/auth"
	"github.com/hbela/task-with-api-notification/internal/common"
)

// startTokenCleanup removes expired and revoked refresh tokens on a
// fixed interval.
func startTokenCleanup(ctx context.Context, authService *auth.Service, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Token cleanup: stopped")
			return
		case <-ticker.C:
			cleanupTokens(ctx, authService, logger)
		}
	}
}

func cleanupTokens(ctx context.Context, authService *auth.Service, logger *common.Logger) {
	start := time.Now()

	deleted, err := authService.CleanupExpired(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Token cleanup: failed")
		return
	}
	if deleted > 0 {
		logger.Info().
			Int("deleted", deleted).
			Dur("elapsed", time.Since(start)).
			Msg("Token cleanup: complete")
	}
}
