package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labelkit/labelkit/schema"
	"github.com/labelkit/labelkit/store"
)

const setupConfig = `<View>
  <Image name="image" value="$ocr"/>
  <TextArea name="transcription" toName="image"/>
</View>`

func TestApplySetup(t *testing.T) {
	base := NewBase(zap.NewNop(), store.NewMemoryStore(), "0.0.1")

	_, err := base.LabelInterface()
	assert.Error(t, err, "no configuration before setup")

	req := &schema.SetupRequest{
		Project:     "42.1700000000",
		Schema:      setupConfig,
		Hostname:    "http://labelstudio:8080",
		AccessToken: "token",
	}
	require.NoError(t, base.ApplySetup(context.Background(), req))

	li, err := base.LabelInterface()
	require.NoError(t, err)
	fromName, toName, dataKey, err := li.FirstTagOccurrence("TextArea", "Image")
	require.NoError(t, err)
	assert.Equal(t, "transcription", fromName)
	assert.Equal(t, "image", toName)
	assert.Equal(t, "ocr", dataKey)
	assert.Equal(t, "42.1700000000", base.Project())
}

func TestApplySetupRejectsBadConfig(t *testing.T) {
	base := NewBase(zap.NewNop(), store.NewMemoryStore(), "0.0.1")
	err := base.ApplySetup(context.Background(), &schema.SetupRequest{Schema: "<View"})
	assert.Error(t, err)
}

func TestModelVersionLifecycle(t *testing.T) {
	ctx := context.Background()
	base := NewBase(zap.NewNop(), store.NewMemoryStore(), "0.0.1")
	require.NoError(t, base.ApplySetup(ctx, &schema.SetupRequest{Project: "1", Schema: setupConfig}))

	assert.Equal(t, "0.0.1", base.ModelVersion(ctx), "default before anything persisted")

	require.NoError(t, base.SetModelVersion(ctx, "0.0.2"))
	assert.Equal(t, "0.0.2", base.ModelVersion(ctx))
}

func TestGetSetScopedByProject(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	base := NewBase(zap.NewNop(), st, "")
	require.NoError(t, base.ApplySetup(ctx, &schema.SetupRequest{Project: "1", Schema: setupConfig}))
	require.NoError(t, base.Set(ctx, "my_data", "my_new_data_value"))

	v, err := base.Get(ctx, "my_data")
	require.NoError(t, err)
	assert.Equal(t, "my_new_data_value", v)

	// A different project does not see the value.
	other := NewBase(zap.NewNop(), st, "")
	require.NoError(t, other.ApplySetup(ctx, &schema.SetupRequest{Project: "2", Schema: setupConfig}))
	_, err = other.Get(ctx, "my_data")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApplyLabelConfigFromPredict(t *testing.T) {
	base := NewBase(zap.NewNop(), store.NewMemoryStore(), "")

	require.NoError(t, base.ApplyLabelConfig(""), "empty config is a no-op")
	_, err := base.LabelInterface()
	assert.Error(t, err)

	require.NoError(t, base.ApplyLabelConfig(setupConfig))
	_, err = base.LabelInterface()
	assert.NoError(t, err)
}
