package stratigraphy

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Rect is an axis-aligned rectangle in PDF pixel coordinates, serialized by
// the extraction pipeline as a four-element [x0, y0, x1, y1] array.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

func (r *Rect) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) != 4 {
		return fmt.Errorf("rect has %d coordinates, want 4", len(coords))
	}
	r.X0, r.Y0, r.X1, r.Y1 = coords[0], coords[1], coords[2], coords[3]
	return nil
}

// PageSize holds the dimensions of one document page as seen by the
// extraction pipeline.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Coordinates is the borehole location extracted from the document header.
// Page is 1-based.
type Coordinates struct {
	East  float64 `json:"E"`
	North float64 `json:"N"`
	Rect  Rect    `json:"rect"`
	Page  int     `json:"page"`
}

func (c Coordinates) String() string {
	return "E: " + strconv.FormatFloat(c.East, 'f', -1, 64) +
		", N: " + strconv.FormatFloat(c.North, 'f', -1, 64)
}

// Metadata carries document-level extraction results.
type Metadata struct {
	Coordinates *Coordinates `json:"coordinates"`
}

// DepthValue is a single recognized depth figure and where it was found.
type DepthValue struct {
	Value float64 `json:"value"`
	Rect  Rect    `json:"rect"`
}

// DepthInterval is the depth range of a layer. Start may be missing for the
// topmost layer; BackgroundRect spans both figures when present.
type DepthInterval struct {
	Start          *DepthValue `json:"start"`
	End            *DepthValue `json:"end"`
	BackgroundRect *Rect       `json:"background_rect"`
}

// MaterialDescription is the textual description of a layer. PageNumber is
// 1-based.
type MaterialDescription struct {
	Text       string `json:"text"`
	Rect       Rect   `json:"rect"`
	PageNumber int    `json:"page_number"`
}

// Layer is one stratigraphic layer prediction.
type Layer struct {
	ID                  string              `json:"id"`
	MaterialDescription MaterialDescription `json:"material_description"`
	DepthInterval       *DepthInterval      `json:"depth_interval"`
}

// FilePredictions is the pipeline output for a single document.
type FilePredictions struct {
	Metadata  Metadata   `json:"metadata"`
	Layers    []Layer    `json:"layers"`
	PageSizes []PageSize `json:"page_sizes"`
}

// Document maps document file names to their predictions, mirroring the
// top-level structure of the pipeline's predictions file.
type Document map[string]FilePredictions
