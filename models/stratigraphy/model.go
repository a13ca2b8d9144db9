// Package stratigraphy implements full-page pre-annotation of borehole
// profile documents: an external extraction pipeline detects stratigraphic
// layers, their material descriptions and depth intervals in the source PDF,
// and the results are projected onto the rendered page image as labeled
// regions.
package stratigraphy

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/backend"
	"github.com/labelkit/labelkit/config"
	"github.com/labelkit/labelkit/loader"
	"github.com/labelkit/labelkit/schema"
)

// PinnedVersion is stored on setup so re-labeling rounds keep a stable
// version tag until training produces a new one.
const PinnedVersion = "0.0.1"

var (
	_ backend.Model     = (*Model)(nil)
	_ backend.Trainer   = (*Model)(nil)
	_ backend.SetupHook = (*Model)(nil)
)

// Model runs the layer-extraction pipeline against the task's source
// document and converts the predictions of the referenced page.
type Model struct {
	base   *backend.Base
	files  *loader.Loader
	runner *Runner
	pdfDir string
	logger *zap.Logger
}

func New(base *backend.Base, files *loader.Loader, runner *Runner, cfg config.IConfig) (*Model, error) {
	dir, err := cfg.PDFDir()
	if err != nil {
		return nil, fmt.Errorf("read pdf dir: %w", err)
	}
	return &Model{
		base:   base,
		files:  files,
		runner: runner,
		pdfDir: dir,
		logger: base.Logger().With(zap.String("model", "stratigraphy")),
	}, nil
}

func (m *Model) Name() string { return "stratigraphy" }

// Setup pins the model version after the labeling config is applied.
func (m *Model) Setup(ctx context.Context) error {
	return m.base.SetModelVersion(ctx, PinnedVersion)
}

// Predict extracts layers from the document behind the task's page image.
// The interactive context is ignored: predictions cover the whole page.
func (m *Model) Predict(ctx context.Context, tasks []schema.Task, _ *schema.PredictContext) (*schema.ModelResponse, error) {
	version := m.base.ModelVersion(ctx)
	if len(tasks) == 0 {
		return nil, fmt.Errorf("predict called without tasks")
	}
	task := tasks[0]

	li, err := m.base.LabelInterface()
	if err != nil {
		return nil, err
	}
	_, _, dataKey, err := li.FirstTagOccurrence("TextArea", "Image")
	if err != nil {
		return nil, err
	}
	ref, err := task.DataString(dataKey)
	if err != nil {
		return nil, err
	}
	pageRef, err := loader.ParsePageRef(ref)
	if err != nil {
		return nil, err
	}

	pdfPath := filepath.Join(m.pdfDir, pageRef.Project, pageRef.PDFName)
	doc, err := m.runner.Run(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	file, ok := m.filePredictions(doc, pageRef.PDFName)
	if !ok {
		m.logger.Warn("No predictions for document",
			zap.String("pdf", pageRef.PDFName),
			zap.Int("task", task.ID))
		return schema.EmptyResponse(version), nil
	}

	// The annotation UI shows a rendered PNG of the page; its width fixes
	// the scale between pipeline coordinates and displayed pixels.
	lsPageWidth, _, err := m.files.ImageSize(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("read page image size: %w", err)
	}

	results, err := BuildResults(file, pageRef.Page, lsPageWidth)
	if err != nil {
		return nil, fmt.Errorf("convert predictions of %s: %w", pageRef.PDFName, err)
	}

	m.logger.Info("Built page predictions",
		zap.Int("task", task.ID),
		zap.String("pdf", pageRef.PDFName),
		zap.Int("page", pageRef.Page),
		zap.Int("results", len(results)))

	return &schema.ModelResponse{
		ModelVersion: version,
		Predictions: []schema.Prediction{{
			ModelVersion: version,
			Result:       results,
		}},
	}, nil
}

// filePredictions looks up the document's predictions by file name. Pipeline
// versions differ in how they key the output (bare name, path, casing), so a
// single-entry document is taken as a match regardless of its key.
func (m *Model) filePredictions(doc Document, pdfName string) (FilePredictions, bool) {
	if file, ok := doc[pdfName]; ok {
		return file, true
	}
	if len(doc) == 1 {
		for key, file := range doc {
			m.logger.Debug("Predictions keyed by a different name",
				zap.String("key", key), zap.String("pdf", pdfName))
			return file, true
		}
	}
	return FilePredictions{}, false
}

// Fit records the annotation event so later training rounds can consume the
// corrected regions. Heavy retraining stays outside the request path.
func (m *Model) Fit(ctx context.Context, event *schema.Event) error {
	if err := m.base.Set(ctx, "last_event", event.Action); err != nil {
		return err
	}
	m.logger.Info("Recorded annotation event", zap.String("action", event.Action))
	return nil
}
