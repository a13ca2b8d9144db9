// Package textextract implements interactive pre-annotation over digitally
// born PDFs: instead of running OCR on the rendered page image, it extracts
// the embedded text of the source document inside the drawn rectangle.
package textextract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/backend"
	"github.com/labelkit/labelkit/config"
	"github.com/labelkit/labelkit/loader"
	"github.com/labelkit/labelkit/models/depth"
	"github.com/labelkit/labelkit/schema"
)

var _ backend.Model = (*Model)(nil)

// Model extracts embedded PDF text for the most recently drawn region.
type Model struct {
	base   *backend.Base
	source TextSource
	pdfDir string
	logger *zap.Logger
}

func New(base *backend.Base, source TextSource, cfg config.IConfig) (*Model, error) {
	dir, err := cfg.ValidationDir()
	if err != nil {
		return nil, fmt.Errorf("read validation dir: %w", err)
	}
	return &Model{
		base:   base,
		source: source,
		pdfDir: dir,
		logger: base.Logger().With(zap.String("model", "textextract")),
	}, nil
}

func (m *Model) Name() string { return "textextract" }

// Predict maps the task's page image back to its source PDF, projects the
// drawn rectangle into PDF page coordinates and returns the embedded text
// inside it. Without an interactive context no predictions are returned.
func (m *Model) Predict(ctx context.Context, tasks []schema.Task, predictCtx *schema.PredictContext) (*schema.ModelResponse, error) {
	version := m.base.ModelVersion(ctx)
	region := predictCtx.Last()
	if region == nil {
		return schema.EmptyResponse(version), nil
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("predict called without tasks")
	}
	task := tasks[0]

	li, err := m.base.LabelInterface()
	if err != nil {
		return nil, err
	}
	fromName, _, dataKey, err := li.FirstTagOccurrence("TextArea", "Image")
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
	pdfPath := filepath.Join(m.pdfDir, pageRef.PDFName)

	pageWidth, pageHeight, err := m.source.PageSize(pdfPath, pageRef.Page)
	if err != nil {
		return nil, fmt.Errorf("read page size of %s: %w", pageRef.PDFName, err)
	}

	// The rendered image and the PDF page share an aspect ratio, so percent
	// coordinates map straight into PDF points.
	clip := Clip{
		X:      region.Value.X / 100 * pageWidth,
		Y:      region.Value.Y / 100 * pageHeight,
		Width:  region.Value.Width / 100 * pageWidth,
		Height: region.Value.Height / 100 * pageHeight,
	}
	text, err := m.source.ClipText(pdfPath, pageRef.Page, clip)
	if err != nil {
		return nil, fmt.Errorf("extract text of %s page %d: %w", pageRef.PDFName, pageRef.Page, err)
	}
	text = strings.Join(strings.Fields(text), " ")

	if isDepthInterval(predictCtx) {
		text = depth.Interval(text)
	}

	value := region.Value
	value.Text = []string{text}
	transcription := schema.ResultItem{
		ID:             region.ID,
		FromName:       fromName,
		ToName:         region.ToName,
		Type:           "textarea",
		Origin:         "manual",
		OriginalWidth:  region.OriginalWidth,
		OriginalHeight: region.OriginalHeight,
		Value:          value,
	}

	m.logger.Debug("Extracted region text",
		zap.Int("task", task.ID),
		zap.String("pdf", pageRef.PDFName),
		zap.Int("page", pageRef.Page))

	return &schema.ModelResponse{
		ModelVersion: version,
		Predictions: []schema.Prediction{{
			ModelVersion: version,
			Result:       []any{transcription, *region},
		}},
	}, nil
}

func isDepthInterval(predictCtx *schema.PredictContext) bool {
	if predictCtx == nil {
		return false
	}
	for _, item := range predictCtx.Result {
		if item.FromName != "label" {
			continue
		}
		if len(item.Value.Labels) == 1 && item.Value.Labels[0] == depth.IntervalLabel {
			return true
		}
	}
	return false
}
