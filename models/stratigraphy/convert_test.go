package stratigraphy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelkit/labelkit/schema"
)

func fixture() FilePredictions {
	return FilePredictions{
		Metadata: Metadata{
			Coordinates: &Coordinates{
				East:  2600000,
				North: 1200000,
				Rect:  Rect{X0: 59.5, Y0: 84.2, X1: 178.5, Y1: 126.3},
				Page:  1,
			},
		},
		Layers: []Layer{
			{
				ID: "aaaa1111",
				MaterialDescription: MaterialDescription{
					Text:       "Kies, sandig",
					Rect:       Rect{X0: 119, Y0: 421, X1: 357, Y1: 463.1},
					PageNumber: 1,
				},
				DepthInterval: &DepthInterval{
					Start:          &DepthValue{Value: 1.5, Rect: Rect{X0: 10, Y0: 421, X1: 40, Y1: 440}},
					End:            &DepthValue{Value: 4.8, Rect: Rect{X0: 10, Y0: 445, X1: 40, Y1: 463}},
					BackgroundRect: &Rect{X0: 10, Y0: 421, X1: 40, Y1: 463},
				},
			},
			{
				ID: "bbbb2222",
				MaterialDescription: MaterialDescription{
					Text:       "Humus",
					Rect:       Rect{X0: 119, Y0: 84.2, X1: 357, Y1: 120},
					PageNumber: 1,
				},
				DepthInterval: &DepthInterval{
					End: &DepthValue{Value: 1.5, Rect: Rect{X0: 10, Y0: 84.2, X1: 40, Y1: 100}},
				},
			},
			{
				ID: "cccc3333",
				MaterialDescription: MaterialDescription{
					Text:       "Fels",
					Rect:       Rect{X0: 119, Y0: 42.1, X1: 357, Y1: 84.2},
					PageNumber: 2,
				},
			},
		},
		PageSizes: []PageSize{
			{Width: 595, Height: 842},
			{Width: 595, Height: 842},
		},
	}
}

func itemsByID(t *testing.T, results []any) map[string][]schema.ResultItem {
	t.Helper()
	byID := make(map[string][]schema.ResultItem)
	for _, r := range results {
		if item, ok := r.(schema.ResultItem); ok {
			byID[item.ID] = append(byID[item.ID], item)
		}
	}
	return byID
}

func TestBuildResultsFirstPage(t *testing.T) {
	results, err := BuildResults(fixture(), 0, 1190)
	require.NoError(t, err)

	// Coordinates triplet, two layer material triplets, two depth-interval
	// triplets and two relations.
	require.Len(t, results, 17)

	byID := itemsByID(t, results)
	material := byID["aaaa1111_Material Description"]
	require.Len(t, material, 3)
	assert.Equal(t, "rectangle", material[0].Type)
	assert.Equal(t, "bbox", material[0].FromName)
	assert.Equal(t, "labels", material[1].Type)
	assert.Equal(t, []string{"Material Description"}, material[1].Value.Labels)
	assert.Equal(t, "textarea", material[2].Type)
	assert.Equal(t, []string{"Kies, sandig"}, material[2].Value.Text)

	// Percent coordinates against the pipeline page size.
	assert.InDelta(t, 20, material[0].Value.X, 1e-9)     // 119 / 595
	assert.InDelta(t, 50, material[0].Value.Y, 1e-9)     // 421 / 842
	assert.InDelta(t, 40, material[0].Value.Width, 1e-9) // 238 / 595
	assert.InDelta(t, 5, material[0].Value.Height, 1e-9) // 42.1 / 842

	// The rendered image is twice the pipeline page size.
	assert.Equal(t, 1190, material[0].OriginalWidth)
	assert.Equal(t, 1684, material[0].OriginalHeight)

	// Complete interval uses the background rect and both values.
	depth := byID["aaaa1111_Depth Interval"]
	require.Len(t, depth, 3)
	assert.Equal(t, []string{"start: 1.5 end: 4.8"}, depth[2].Value.Text)

	// Missing start falls back to the end rect and start 0.
	openDepth := byID["bbbb2222_Depth Interval"]
	require.Len(t, openDepth, 3)
	assert.Equal(t, []string{"start: 0 end: 1.5"}, openDepth[2].Value.Text)
	assert.InDelta(t, 10, openDepth[0].Value.Y, 1e-9) // 84.2 / 842

	var relations []schema.Relation
	for _, r := range results {
		if rel, ok := r.(schema.Relation); ok {
			relations = append(relations, rel)
		}
	}
	require.Len(t, relations, 2)
	assert.Equal(t, "aaaa1111_Material Description", relations[0].FromID)
	assert.Equal(t, "aaaa1111_Depth Interval", relations[0].ToID)
	assert.Equal(t, "right", relations[0].Direction)
}

func TestBuildResultsIntegralDepthsKeepDecimal(t *testing.T) {
	file := fixture()
	file.Layers[0].DepthInterval.Start.Value = 2
	file.Layers[0].DepthInterval.End.Value = 3

	results, err := BuildResults(file, 0, 1190)
	require.NoError(t, err)

	depth := itemsByID(t, results)["aaaa1111_Depth Interval"]
	require.Len(t, depth, 3)
	assert.Equal(t, []string{"start: 2.0 end: 3.0"}, depth[2].Value.Text)
}

func TestBuildResultsCoordinatesOnlyOnTheirPage(t *testing.T) {
	results, err := BuildResults(fixture(), 0, 1190)
	require.NoError(t, err)

	var coords []schema.ResultItem
	for _, r := range results {
		item, ok := r.(schema.ResultItem)
		if ok && item.Type == "textarea" && len(item.Value.Labels) == 0 &&
			len(item.Value.Text) == 1 && item.Value.Text[0] == "E: 2600000, N: 1200000" {
			coords = append(coords, item)
		}
	}
	require.Len(t, coords, 1)

	// Page 2 carries only the layer without a depth interval.
	results, err = BuildResults(fixture(), 1, 1190)
	require.NoError(t, err)
	require.Len(t, results, 3)
	byID := itemsByID(t, results)
	assert.Contains(t, byID, "cccc3333_Material Description")
}

func TestBuildResultsPageOutOfRange(t *testing.T) {
	_, err := BuildResults(fixture(), 5, 1190)
	assert.Error(t, err)
}

func TestRectJSONRoundTrip(t *testing.T) {
	var doc Document
	raw := `{
	  "borehole.pdf": {
	    "metadata": {"coordinates": {"E": 2600000, "N": 1200000, "rect": [10, 20, 30, 40], "page": 1}},
	    "layers": [{
	      "id": "aaaa1111",
	      "material_description": {"text": "Kies", "rect": [119, 421, 357, 463], "page_number": 1},
	      "depth_interval": {
	        "start": {"value": 1.5, "rect": [10, 421, 40, 440]},
	        "end": {"value": 4.8, "rect": [10, 445, 40, 463]},
	        "background_rect": [10, 421, 40, 463]
	      }
	    }],
	    "page_sizes": [{"width": 595, "height": 842}]
	  }
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	file := doc["borehole.pdf"]
	require.Len(t, file.Layers, 1)
	assert.Equal(t, Rect{X0: 119, Y0: 421, X1: 357, Y1: 463}, file.Layers[0].MaterialDescription.Rect)
	assert.InDelta(t, 238, file.Layers[0].MaterialDescription.Rect.Width(), 1e-9)
	require.NotNil(t, file.Metadata.Coordinates)
	assert.Equal(t, 1, file.Metadata.Coordinates.Page)

	out, err := json.Marshal(file.Layers[0].MaterialDescription.Rect)
	require.NoError(t, err)
	assert.JSONEq(t, `[119, 421, 357, 463]`, string(out))
}

func TestRectRejectsWrongArity(t *testing.T) {
	var r Rect
	assert.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &r))
}
