package schema

// Prediction is one pre-annotation for a task. Result holds a mix of
// ResultItem and Relation entries, mirroring the heterogeneous result array
// of the Label Studio prediction format.
type Prediction struct {
	ModelVersion string  `json:"model_version,omitempty"`
	Score        float64 `json:"score"`
	Result       []any   `json:"result"`
}

// ModelResponse is the body of a successful POST /predict response.
type ModelResponse struct {
	Predictions  []Prediction `json:"results"`
	ModelVersion string       `json:"model_version,omitempty"`
}

// EmptyResponse returns a response with no predictions, used when an
// interactive model receives no context to work on.
func EmptyResponse(modelVersion string) *ModelResponse {
	return &ModelResponse{Predictions: []Prediction{}, ModelVersion: modelVersion}
}
