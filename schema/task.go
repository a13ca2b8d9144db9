package schema

import (
	"encoding/json"
	"fmt"
)

// Task is a single Label Studio labeling task as delivered to the backend.
// The Data map carries the project-defined payload, typically a URL or path
// to the image/PDF under a key declared in the labeling config (e.g. "ocr").
type Task struct {
	ID          int                    `json:"id"`
	Data        map[string]interface{} `json:"data"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
	Project     int                    `json:"project,omitempty"`
	Annotations []json.RawMessage      `json:"annotations,omitempty"`
	Predictions []json.RawMessage      `json:"predictions,omitempty"`
}

// DataString returns the task data value under key as a string.
func (t *Task) DataString(key string) (string, error) {
	raw, ok := t.Data[key]
	if !ok {
		return "", fmt.Errorf("task %d has no data key %q", t.ID, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("task %d data key %q is not a string (got %T)", t.ID, key, raw)
	}
	return s, nil
}

// PredictRequest is the body of POST /predict as sent by Label Studio.
type PredictRequest struct {
	Tasks       []Task         `json:"tasks"`
	LabelConfig string         `json:"label_config,omitempty"`
	Project     string         `json:"project,omitempty"`
	Params      *PredictParams `json:"params,omitempty"`
}

// PredictParams wraps optional prediction parameters, most importantly the
// interactive annotation context.
type PredictParams struct {
	Login    string          `json:"login,omitempty"`
	Password string          `json:"password,omitempty"`
	Context  *PredictContext `json:"context,omitempty"`
}

// Context returns the interactive context of the request, if any.
func (r *PredictRequest) Context() *PredictContext {
	if r.Params == nil {
		return nil
	}
	return r.Params.Context
}

// SetupRequest is the body of POST /setup. Schema carries the labeling
// configuration XML of the project.
type SetupRequest struct {
	Project      string          `json:"project"`
	Schema       string          `json:"schema"`
	Hostname     string          `json:"hostname,omitempty"`
	AccessToken  string          `json:"access_token,omitempty"`
	ModelVersion string          `json:"model_version,omitempty"`
	ExtraParams  json.RawMessage `json:"extra_params,omitempty"`
}

// SetupResponse acknowledges a setup call with the active model version.
type SetupResponse struct {
	ModelVersion string `json:"model_version"`
}
