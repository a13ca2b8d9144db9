package schema

// RegionValue is the geometry-and-content payload of a result item. All
// coordinates are percentages of the original image dimensions, origin in the
// upper-left corner, as defined by the Label Studio export format.
type RegionValue struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Rotation float64  `json:"rotation"`
	Labels   []string `json:"labels,omitempty"`
	Text     []string `json:"text,omitempty"`
}

// ResultItem is a single region result inside an annotation or prediction.
// FromName/ToName reference tag names from the labeling configuration.
type ResultItem struct {
	ID             string      `json:"id,omitempty"`
	FromName       string      `json:"from_name,omitempty"`
	ToName         string      `json:"to_name,omitempty"`
	Type           string      `json:"type,omitempty"`
	OriginalWidth  int         `json:"original_width,omitempty"`
	OriginalHeight int         `json:"original_height,omitempty"`
	ImageRotation  float64     `json:"image_rotation"`
	Origin         string      `json:"origin,omitempty"`
	Value          RegionValue `json:"value"`
}

// Relation links two result items, e.g. a depth interval to the material
// description it belongs to. It shares the result array with ResultItem
// entries and is discriminated by Type == "relation".
type Relation struct {
	Type      string `json:"type"`
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Direction string `json:"direction"`
}

// PredictContext carries annotator-supplied hints for interactive
// pre-annotation: the regions drawn so far, in submission order.
type PredictContext struct {
	Result []ResultItem `json:"result"`
}

// Last returns the most recently drawn region of the context, or nil if the
// context holds no regions.
func (c *PredictContext) Last() *ResultItem {
	if c == nil || len(c.Result) == 0 {
		return nil
	}
	return &c.Result[len(c.Result)-1]
}

// HasLabel reports whether any context region carries the given label value.
func (c *PredictContext) HasLabel(label string) bool {
	if c == nil {
		return false
	}
	for _, item := range c.Result {
		for _, l := range item.Value.Labels {
			if l == label {
				return true
			}
		}
	}
	return false
}
