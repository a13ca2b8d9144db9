// Package ocr defines a small, transport-agnostic contract for plugging OCR
// engines into the prediction path. The default provider is Tesseract; the
// interface keeps engine-specific knobs out of the models so a cloud
// recognizer can be swapped in without touching callers.
package ocr

import "context"

// Region is a rectangular crop in pixel coordinates, origin in the
// upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input is a single image submitted for recognition.
type Input struct {
	// Image is the encoded image payload (PNG, JPEG or TIFF).
	Image []byte
	// Languages lists the trained-data hints, e.g. "chi_sim", "eng", "deu".
	Languages []string
	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
	// Region restricts recognition to a crop of the image. Nil processes the
	// full image.
	Region *Region
	// Variables passes engine-specific settings (e.g. Tesseract's
	// tessedit_pageseg_mode) without widening the API surface.
	Variables map[string]string
}

// Word is a single recognized token with pixel bounds relative to the
// submitted (cropped) image.
type Word struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// Result is the recognition output for one input.
type Result struct {
	// Text is the linearized recognized text, trimmed.
	Text string
	// Words carries per-token geometry when the engine provides it.
	Words []Word
	// MeanConfidence is the average word confidence in [0,1]; zero when the
	// engine reports none.
	MeanConfidence float64
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// Option mutates an Input before submission.
type Option func(*Input)

// Apply builds an Input for the given image with the provided options.
func Apply(image []byte, opts ...Option) Input {
	in := Input{Image: image}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// WithLanguages sets the language hints.
func WithLanguages(langs ...string) Option {
	return func(in *Input) { in.Languages = langs }
}

// WithDPI sets the effective dots-per-inch of the image.
func WithDPI(dpi int) Option {
	return func(in *Input) { in.DPI = dpi }
}

// WithRegion restricts recognition to a pixel crop.
func WithRegion(r Region) Option {
	return func(in *Input) { in.Region = &r }
}

// WithVariable passes an engine-specific variable.
func WithVariable(name, value string) Option {
	return func(in *Input) {
		if in.Variables == nil {
			in.Variables = make(map[string]string)
		}
		in.Variables[name] = value
	}
}
