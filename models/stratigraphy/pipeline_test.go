package stratigraphy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labelkit/labelkit/config"
)

func writePredictions(t *testing.T, dir string, doc Document) {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, predictionsFile), data, 0644))
}

func newTestRunner(t *testing.T, tempDir string) *Runner {
	t.Helper()
	cfg := config.NewInternalConfig()
	cfg.TempDirValue = tempDir
	cfg.PipelineCommandValue = nil
	r, err := NewRunner(cfg, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestRunnerReadsExistingPredictions(t *testing.T) {
	dir := t.TempDir()
	writePredictions(t, dir, Document{"borehole.pdf": fixture()})

	doc, err := newTestRunner(t, dir).Run(context.Background(), "/data/pdf/zurich/borehole.pdf")
	require.NoError(t, err)
	require.Contains(t, doc, "borehole.pdf")
	assert.Len(t, doc["borehole.pdf"].Layers, 3)
}

func TestRunnerMissingPredictionsFile(t *testing.T) {
	_, err := newTestRunner(t, t.TempDir()).Run(context.Background(), "/data/pdf/borehole.pdf")
	assert.Error(t, err)
}

func TestRunnerInvalidPredictions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, predictionsFile), []byte("{broken"), 0644))

	_, err := newTestRunner(t, dir).Run(context.Background(), "/data/pdf/borehole.pdf")
	assert.ErrorContains(t, err, "decode predictions")
}

func TestRunnerExecutesPipeline(t *testing.T) {
	dir := t.TempDir()
	writePredictions(t, dir, Document{"borehole.pdf": fixture()})

	cfg := config.NewInternalConfig()
	cfg.TempDirValue = dir
	marker := filepath.Join(dir, "invoked")
	cfg.PipelineCommandValue = []string{"sh", "-c", "echo \"$@\" > " + marker, "pipeline"}
	r, err := NewRunner(cfg, zap.NewNop())
	require.NoError(t, err)

	doc, err := r.Run(context.Background(), "/data/pdf/borehole.pdf")
	require.NoError(t, err)
	require.Contains(t, doc, "borehole.pdf")

	invoked, readErr := os.ReadFile(marker)
	require.NoError(t, readErr)
	assert.Contains(t, string(invoked), "--input /data/pdf/borehole.pdf")
	assert.Contains(t, string(invoked), "--skip-draw-predictions")
}

func TestRunnerPipelineFailure(t *testing.T) {
	cfg := config.NewInternalConfig()
	cfg.TempDirValue = t.TempDir()
	cfg.PipelineCommandValue = []string{"false"}
	r, err := NewRunner(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "/data/pdf/borehole.pdf")
	assert.ErrorContains(t, err, "pipeline failed")
}
