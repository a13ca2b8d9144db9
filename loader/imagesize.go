package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageSize loads the referenced image and returns its dimensions in pixels
// without decoding the full pixel data.
func (l *Loader) ImageSize(ctx context.Context, ref string) (width, height int, err error) {
	data, err := l.Load(ctx, ref)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image %s: %w", ref, err)
	}
	return cfg.Width, cfg.Height, nil
}
