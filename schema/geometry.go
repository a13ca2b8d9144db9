package schema

// PixelRect is an axis-aligned rectangle in pixel coordinates, origin in the
// upper-left corner of the image.
type PixelRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ToPixels converts the percent-based region to pixel coordinates of an image
// with the given original dimensions.
func (v RegionValue) ToPixels(originalWidth, originalHeight int) PixelRect {
	return PixelRect{
		X:      v.X * float64(originalWidth) / 100,
		Y:      v.Y * float64(originalHeight) / 100,
		Width:  v.Width * float64(originalWidth) / 100,
		Height: v.Height * float64(originalHeight) / 100,
	}
}

// ToPercent converts a pixel rectangle back to the percent-based region value
// of an image with the given original dimensions.
func (r PixelRect) ToPercent(originalWidth, originalHeight int) RegionValue {
	return RegionValue{
		X:      r.X / float64(originalWidth) * 100,
		Y:      r.Y / float64(originalHeight) * 100,
		Width:  r.Width / float64(originalWidth) * 100,
		Height: r.Height / float64(originalHeight) * 100,
	}
}

// Scale returns the rectangle scaled by the given factors on both axes.
func (r PixelRect) Scale(sx, sy float64) PixelRect {
	return PixelRect{X: r.X * sx, Y: r.Y * sy, Width: r.Width * sx, Height: r.Height * sy}
}

// Percent converts a length in pixels to a percentage of the original length.
func Percent(pixels, originalLength float64) float64 {
	return 100 * pixels / originalLength
}
