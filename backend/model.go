// Package backend defines the model contract of the ML backend: the
// prediction, training and setup hooks a model implements, plus the shared
// runtime state (labeling config, credentials, persistence) every model
// carries.
package backend

import (
	"context"

	"github.com/labelkit/labelkit/schema"
)

// Model produces predictions for labeling tasks. Predict receives the task
// batch and, for interactive pre-annotation, the annotator context with the
// regions drawn so far.
type Model interface {
	// Name identifies the model in health responses and logs.
	Name() string
	Predict(ctx context.Context, tasks []schema.Task, predictCtx *schema.PredictContext) (*schema.ModelResponse, error)
}

// Trainer is implemented by models that react to annotation events. Fit is
// called for each training-relevant webhook delivery; long-running work
// should be handed off, not done inline.
type Trainer interface {
	Fit(ctx context.Context, event *schema.Event) error
}

// SetupHook is implemented by models that need to run logic after the
// labeling configuration is (re)applied, e.g. to pin a model version.
type SetupHook interface {
	Setup(ctx context.Context) error
}
