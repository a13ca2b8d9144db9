package stratigraphy

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/labelkit/labelkit/models/depth"
	"github.com/labelkit/labelkit/schema"
)

// Region label names used by the deployed annotation projects.
const (
	LabelMaterialDescription = "Material Description"
	LabelDepthInterval       = "Depth Interval"
	LabelCoordinates         = "Coordinates"
)

// BuildResults converts one document's pipeline predictions for a single
// page into Label Studio result entries. page is 0-based; lsPageWidth is the
// width of the rendered page image served to the annotation UI, which differs
// from the pipeline's page width by a rendering scale factor.
func BuildResults(file FilePredictions, page int, lsPageWidth int) ([]any, error) {
	if page < 0 || page >= len(file.PageSizes) {
		return nil, fmt.Errorf("page %d out of range (%d page sizes)", page, len(file.PageSizes))
	}
	size := file.PageSizes[page]
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("page %d has degenerate size %gx%g", page, size.Width, size.Height)
	}
	scaleFactor := float64(lsPageWidth) / size.Width
	originalWidth := int(size.Width * scaleFactor)
	originalHeight := int(size.Height * scaleFactor)

	var results []any
	var linkedLayers []string

	if c := file.Metadata.Coordinates; c != nil && page+1 == c.Page {
		results = append(results, triplet(
			hexID(),
			regionValue(c.Rect, size),
			LabelCoordinates,
			c.String(),
			originalWidth, originalHeight,
		)...)
	}

	for _, layer := range file.Layers {
		if layer.MaterialDescription.PageNumber != page+1 {
			continue
		}

		results = append(results, triplet(
			layer.ID+"_"+LabelMaterialDescription,
			regionValue(layer.MaterialDescription.Rect, size),
			LabelMaterialDescription,
			layer.MaterialDescription.Text,
			originalWidth, originalHeight,
		)...)

		interval := layer.DepthInterval
		if interval == nil || interval.End == nil {
			continue
		}
		var rect Rect
		var text string
		switch {
		case interval.Start == nil:
			rect = interval.End.Rect
			text = fmt.Sprintf("start: 0 end: %s", depth.Format(interval.End.Value))
		case interval.BackgroundRect != nil:
			rect = *interval.BackgroundRect
			text = fmt.Sprintf("start: %s end: %s", depth.Format(interval.Start.Value), depth.Format(interval.End.Value))
		default:
			continue
		}
		linkedLayers = append(linkedLayers, layer.ID)
		results = append(results, triplet(
			layer.ID+"_"+LabelDepthInterval,
			regionValue(rect, size),
			LabelDepthInterval,
			text,
			originalWidth, originalHeight,
		)...)
	}

	for _, id := range linkedLayers {
		results = append(results, schema.Relation{
			Type:      "relation",
			FromID:    id + "_" + LabelMaterialDescription,
			ToID:      id + "_" + LabelDepthInterval,
			Direction: "right",
		})
	}
	return results, nil
}

// hexID returns a fresh 32-character lowercase hex identifier.
func hexID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// regionValue converts a pipeline rectangle to percent coordinates relative
// to its page.
func regionValue(r Rect, size PageSize) schema.RegionValue {
	return schema.RegionValue{
		X:      schema.Percent(r.X0, size.Width),
		Y:      schema.Percent(r.Y0, size.Height),
		Width:  schema.Percent(r.Width(), size.Width),
		Height: schema.Percent(r.Height(), size.Height),
	}
}

// triplet builds the rectangle, labels and textarea entries that together
// describe one labeled region.
func triplet(id string, value schema.RegionValue, label, text string, originalWidth, originalHeight int) []any {
	base := schema.ResultItem{
		ID:             id,
		ToName:         "image",
		Origin:         "manual",
		OriginalWidth:  originalWidth,
		OriginalHeight: originalHeight,
		Value:          value,
	}

	rectangle := base
	rectangle.Type = "rectangle"
	rectangle.FromName = "bbox"

	labels := base
	labels.Type = "labels"
	labels.FromName = "label"
	labels.Value.Labels = []string{label}

	textarea := base
	textarea.Type = "textarea"
	textarea.FromName = "transcription"
	textarea.Value.Text = []string{text}

	return []any{rectangle, labels, textarea}
}
