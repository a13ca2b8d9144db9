package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/schema"
	"github.com/labelkit/labelkit/store"
)

// ModelVersionKey is the store key the active model version is persisted
// under, per project.
const ModelVersionKey = "model_version"

// Base carries the shared runtime state of a model: the parsed labeling
// configuration from the last /setup call, the project identity and
// credentials, and the key-value persistence handle. Safe for concurrent use;
// /setup may race with in-flight /predict calls.
type Base struct {
	mu             sync.RWMutex
	logger         *zap.Logger
	store          store.Store
	defaultVersion string

	project        string
	labelInterface *schema.LabelInterface
	hostname       string
	accessToken    string
}

func NewBase(logger *zap.Logger, st store.Store, defaultVersion string) *Base {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	if defaultVersion == "" {
		defaultVersion = "0.0.1"
	}
	return &Base{logger: logger, store: st, defaultVersion: defaultVersion}
}

// Logger returns the backend logger.
func (b *Base) Logger() *zap.Logger { return b.logger }

// ApplySetup stores the project identity and parses the labeling
// configuration delivered by a /setup call.
func (b *Base) ApplySetup(ctx context.Context, req *schema.SetupRequest) error {
	li, err := schema.ParseLabelConfig(req.Schema)
	if err != nil {
		return fmt.Errorf("apply setup: %w", err)
	}
	b.mu.Lock()
	b.project = req.Project
	b.labelInterface = li
	if req.Hostname != "" {
		b.hostname = req.Hostname
	}
	if req.AccessToken != "" {
		b.accessToken = req.AccessToken
	}
	b.mu.Unlock()
	b.logger.Info("Labeling configuration applied", zap.String("project", req.Project))
	return nil
}

// ApplyLabelConfig parses and stores a labeling configuration without
// touching the project identity. /predict requests carry the config too, so
// a backend that never saw /setup still works.
func (b *Base) ApplyLabelConfig(labelConfig string) error {
	if labelConfig == "" {
		return nil
	}
	li, err := schema.ParseLabelConfig(labelConfig)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.labelInterface = li
	b.mu.Unlock()
	return nil
}

// LabelInterface returns the current parsed labeling configuration.
func (b *Base) LabelInterface() (*schema.LabelInterface, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.labelInterface == nil {
		return nil, errors.New("no labeling configuration received yet")
	}
	return b.labelInterface, nil
}

// Project returns the project identity from the last setup call.
func (b *Base) Project() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.project
}

// Get reads a persisted value for the current project.
func (b *Base) Get(ctx context.Context, key string) (string, error) {
	return b.store.Get(ctx, b.Project(), key)
}

// Set persists a value for the current project.
func (b *Base) Set(ctx context.Context, key, value string) error {
	return b.store.Set(ctx, b.Project(), key, value)
}

// ModelVersion returns the persisted model version of the current project,
// falling back to the configured default.
func (b *Base) ModelVersion(ctx context.Context) string {
	v, err := b.Get(ctx, ModelVersionKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.logger.Warn("Failed to read model version from store", zap.Error(err))
		}
		return b.defaultVersion
	}
	return v
}

// SetModelVersion persists the model version for the current project.
func (b *Base) SetModelVersion(ctx context.Context, version string) error {
	return b.Set(ctx, ModelVersionKey, version)
}
