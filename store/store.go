// Package store provides the key-value persistence backing a model's
// Get/Set calls: model versions and small training artifacts, scoped per
// project.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/labelkit/labelkit/config"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("key not found")

// Store is a project-scoped key-value store.
type Store interface {
	Get(ctx context.Context, project, key string) (string, error)
	Set(ctx context.Context, project, key, value string) error
	Close() error
}

// New builds a Store from the configured driver.
func New(cfg config.IConfig, logger *zap.Logger) (Store, error) {
	driver, err := cfg.StoreDriver()
	if err != nil {
		return nil, fmt.Errorf("read store driver: %w", err)
	}
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		path, err := cfg.StorePath()
		if err != nil {
			return nil, fmt.Errorf("read store path: %w", err)
		}
		if path == "" {
			return nil, errors.New("file store requires store.path")
		}
		return NewFileStore(path, logger)
	case "postgres":
		dsn, err := cfg.StoreDSN()
		if err != nil {
			return nil, fmt.Errorf("read store dsn: %w", err)
		}
		if dsn == "" {
			return nil, errors.New("postgres store requires store.dsn")
		}
		return NewPostgresStore(dsn, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
