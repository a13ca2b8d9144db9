package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictRequestUnmarshal(t *testing.T) {
	jsonData := `{
		"tasks": [{
			"id": 42,
			"data": {"ocr": "/data/upload/1/borehole-profile_0.png"},
			"project": 1
		}],
		"label_config": "<View></View>",
		"params": {
			"context": {
				"result": [{
					"id": "a1b2",
					"from_name": "bbox",
					"to_name": "image",
					"type": "rectangle",
					"original_width": 1728,
					"original_height": 2304,
					"image_rotation": 0,
					"value": {"x": 10.5, "y": 20, "width": 30, "height": 5, "rotation": 0}
				}]
			}
		}
	}`

	var req PredictRequest
	require.NoError(t, json.Unmarshal([]byte(jsonData), &req))
	require.Len(t, req.Tasks, 1)

	path, err := req.Tasks[0].DataString("ocr")
	require.NoError(t, err)
	assert.Equal(t, "/data/upload/1/borehole-profile_0.png", path)

	ctx := req.Context()
	require.NotNil(t, ctx)
	last := ctx.Last()
	require.NotNil(t, last)
	assert.Equal(t, "a1b2", last.ID)
	assert.Equal(t, 1728, last.OriginalWidth)
	assert.InDelta(t, 10.5, last.Value.X, 1e-9)
}

func TestTaskDataString(t *testing.T) {
	task := Task{ID: 7, Data: map[string]interface{}{"ocr": "a.png", "page": 3.0}}

	_, err := task.DataString("missing")
	assert.Error(t, err)

	_, err = task.DataString("page")
	assert.Error(t, err)

	v, err := task.DataString("ocr")
	require.NoError(t, err)
	assert.Equal(t, "a.png", v)
}

func TestPredictionMarshal(t *testing.T) {
	pred := Prediction{
		ModelVersion: "0.0.1",
		Result: []any{
			ResultItem{
				ID:       "r1_Material Description",
				FromName: "transcription",
				ToName:   "image",
				Type:     "textarea",
				Origin:   "manual",
				Value:    RegionValue{X: 1, Y: 2, Width: 3, Height: 4, Text: []string{"sandy gravel"}},
			},
			Relation{
				Type:      "relation",
				FromID:    "r1_Material Description",
				ToID:      "r1_Depth Interval",
				Direction: "right",
			},
		},
	}

	raw, err := json.Marshal(pred)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "0.0.1", decoded["model_version"])
	assert.EqualValues(t, 0, decoded["score"])

	result, ok := decoded["result"].([]any)
	require.True(t, ok)
	require.Len(t, result, 2)
	rel := result[1].(map[string]any)
	assert.Equal(t, "relation", rel["type"])
	assert.Equal(t, "right", rel["direction"])
}

func TestRegionValueRoundTrip(t *testing.T) {
	v := RegionValue{X: 25, Y: 50, Width: 10, Height: 20}
	px := v.ToPixels(2000, 1000)
	assert.InDelta(t, 500, px.X, 1e-9)
	assert.InDelta(t, 500, px.Y, 1e-9)
	assert.InDelta(t, 200, px.Width, 1e-9)
	assert.InDelta(t, 200, px.Height, 1e-9)

	back := px.ToPercent(2000, 1000)
	assert.InDelta(t, v.X, back.X, 1e-9)
	assert.InDelta(t, v.Height, back.Height, 1e-9)
}
