package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/labelkit/labelkit/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "1", "model_version")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "1", "model_version", "0.0.1"))
	v, err := s.Get(ctx, "1", "model_version")
	require.NoError(t, err)
	assert.Equal(t, "0.0.1", v)

	// Same key in another project stays independent.
	_, err = s.Get(ctx, "2", "model_version")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "1", "model_version", "0.0.2"))
	v, _ = s.Get(ctx, "1", "model_version")
	assert.Equal(t, "0.0.2", v)
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "store.json")
	ctx := context.Background()

	s, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "1", "my_data", "my_new_data_value"))
	require.NoError(t, s.Set(ctx, "1", "model_version", "0.0.1"))
	require.NoError(t, s.Close())

	// Reopen and verify the values survived.
	reopened, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "1", "my_data")
	require.NoError(t, err)
	assert.Equal(t, "my_new_data_value", v)

	_, err = reopened.Get(ctx, "1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreBadContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := NewFileStore(path, zap.NewNop())
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	t.Run("memory default", func(t *testing.T) {
		cfg := config.NewInternalConfig()
		s, err := New(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("file", func(t *testing.T) {
		cfg := config.NewInternalConfig()
		cfg.StoreDriverValue = "file"
		cfg.StorePathValue = filepath.Join(t.TempDir(), "store.json")
		s, err := New(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &FileStore{}, s)
	})

	t.Run("file without path", func(t *testing.T) {
		cfg := config.NewInternalConfig()
		cfg.StoreDriverValue = "file"
		_, err := New(cfg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.NewInternalConfig()
		cfg.StoreDriverValue = "redis"
		_, err := New(cfg, zap.NewNop())
		assert.Error(t, err)
	})
}
