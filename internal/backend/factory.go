package backend

import (
	"context"
	"fmt"
	"log/slog"

	"pocketledger/internal/store/local"
	"pocketledger/internal/store/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RemoteBackend:
		return f.createRemoteBackend(ctx, config)
	case LocalBackend:
		return f.createLocalBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRemoteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	db, err := postgres.Open(ctx, config.RemoteDBURL, config.RemoteDBKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote backend: %w", err)
	}

	f.logger.Info("Initialized remote backend")

	return &BackendResult{
		Backend: postgres.New(db),
		Type:    RemoteBackend,
		Cleanup: db.Close,
	}, nil
}

func (f *DefaultFactory) createLocalBackend(config Config) (*BackendResult, error) {
	if config.LocalDBPath == "" {
		f.logger.Warn("No local database path configured, records will not survive a restart")
		return &BackendResult{
			Backend: local.New(local.NewMemoryBlobs()),
			Type:    LocalBackend,
			Cleanup: nil, // Nothing to release for memory blobs
		}, nil
	}

	blobs, err := local.NewSQLiteBlobs(config.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local backend: %w", err)
	}

	f.logger.Info("Initialized local backend", "db_path", config.LocalDBPath)

	return &BackendResult{
		Backend: local.New(blobs),
		Type:    LocalBackend,
		Cleanup: blobs.Close,
	}, nil
}
