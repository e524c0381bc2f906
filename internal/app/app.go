// Package app is the composition root: it loads configuration and wires
// storage and the auth service for cmd/taskd.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hbela/task-with-api-notification/internal/auth"
	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/interfaces"
	"github.com/hbela/task-with-api-notification/internal/storage"
)

// App holds the initialized configuration, storage and services shared
// by the HTTP server.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	Auth        *auth.Service
	StartupTime time.Time

	cleanupCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage and the auth service.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration - check provided path, TASKD_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("TASKD_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "taskd.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/taskd.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	verifier := auth.NewGoogleVerifier(config.Auth.Google.ClientID, config.Auth.Google.CertsURL, logger)
	authService := auth.NewService(&config.Auth, verifier, storageManager.Users(), storageManager.RefreshTokens(), logger)

	if config.IsProduction() && config.Auth.Google.ClientID == "" {
		logger.Warn().Msg("Google client ID not configured - sign-in will be unavailable")
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Auth:        authService,
		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// StartTokenCleanup launches the background goroutine that removes
// expired refresh tokens on the configured interval.
func (a *App) StartTokenCleanup() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cleanupCancel = cancel
	go startTokenCleanup(ctx, a.Auth, a.Logger, a.Config.Auth.GetCleanupInterval())
}

// Close releases all resources held by the App.
// Shutdown order: cancel cleanup, close storage.
func (a *App) Close() {
	if a.cleanupCancel != nil {
		a.cleanupCancel()
		a.cleanupCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
