// Package bboxocr implements interactive OCR pre-annotation: the annotator
// draws a rectangle, the backend recognizes the text inside it with
// Tesseract and fills in the transcription.
package bboxocr

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/labelkit/labelkit/backend"
	"github.com/labelkit/labelkit/config"
	"github.com/labelkit/labelkit/loader"
	"github.com/labelkit/labelkit/models/depth"
	"github.com/labelkit/labelkit/ocr"
	"github.com/labelkit/labelkit/schema"
)

var _ backend.Model = (*Model)(nil)

// Model is the Tesseract-backed interactive OCR model.
type Model struct {
	base        *backend.Base
	files       *loader.Loader
	engine      ocr.Engine
	languages   []string
	pageSegMode int
	logger      *zap.Logger
}

func New(base *backend.Base, files *loader.Loader, engine ocr.Engine, cfg config.IConfig) (*Model, error) {
	languages, err := cfg.OCRLanguages()
	if err != nil {
		return nil, fmt.Errorf("read ocr languages: %w", err)
	}
	psm, err := cfg.OCRPageSegMode()
	if err != nil {
		return nil, fmt.Errorf("read ocr page segmentation mode: %w", err)
	}
	return &Model{
		base:        base,
		files:       files,
		engine:      engine,
		languages:   languages,
		pageSegMode: psm,
		logger:      base.Logger().With(zap.String("model", "bboxocr")),
	}, nil
}

func (m *Model) Name() string { return "bboxocr" }

// Predict recognizes the text inside the most recently drawn region. Without
// an interactive context there is nothing to recognize and no predictions
// are returned.
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

	image, err := m.files.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load task image: %w", err)
	}

	px := region.Value.ToPixels(region.OriginalWidth, region.OriginalHeight)
	input := ocr.Apply(image,
		ocr.WithLanguages(m.languages...),
		ocr.WithPageSegMode(m.pageSegMode),
		ocr.WithRegion(ocr.Region{X: px.X, Y: px.Y, Width: px.Width, Height: px.Height}),
	)
	result, err := m.engine.Recognize(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("recognize region of task %d: %w", task.ID, err)
	}
	text := result.Text

	if isDepthInterval(predictCtx) {
		text = depth.Interval(text)
	}

	value := px.ToPercent(region.OriginalWidth, region.OriginalHeight)
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

	m.logger.Debug("Recognized region",
		zap.Int("task", task.ID),
		zap.Float64("confidence", result.MeanConfidence),
		zap.Int("words", len(result.Words)))

	return &schema.ModelResponse{
		ModelVersion: version,
		Predictions: []schema.Prediction{{
			ModelVersion: version,
			Result:       []any{transcription, *region},
		}},
	}, nil
}

// isDepthInterval reports whether the annotator labeled the region as a
// depth interval.
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
