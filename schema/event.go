package schema

import "encoding/json"

// Webhook actions Label Studio delivers to the backend. The training hook of
// a model is invoked for annotation changes and explicit training starts.
const (
	ActionAnnotationCreated = "ANNOTATION_CREATED"
	ActionAnnotationUpdated = "ANNOTATION_UPDATED"
	ActionAnnotationDeleted = "ANNOTATION_DELETED"
	ActionStartTraining     = "START_TRAINING"
)

// Event is a webhook payload from Label Studio.
type Event struct {
	Action     string          `json:"action"`
	Project    json.RawMessage `json:"project,omitempty"`
	Task       json.RawMessage `json:"task,omitempty"`
	Annotation json.RawMessage `json:"annotation,omitempty"`
}

// IsTraining reports whether the event should trigger the model's Fit hook.
func (e *Event) IsTraining() bool {
	switch e.Action {
	case ActionAnnotationCreated, ActionAnnotationUpdated, ActionStartTraining:
		return true
	}
	return false
}
