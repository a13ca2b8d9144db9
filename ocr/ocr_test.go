package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOptions(t *testing.T) {
	in := Apply([]byte("img"),
		WithLanguages("chi_sim", "eng", "deu"),
		WithPageSegMode(6),
		WithCharWhitelist("0123456789.,"),
		WithDPI(300),
		WithRegion(Region{X: 10, Y: 20, Width: 100, Height: 50}),
	)

	assert.Equal(t, []string{"chi_sim", "eng", "deu"}, in.Languages)
	assert.Equal(t, "6", in.Variables["tessedit_pageseg_mode"])
	assert.Equal(t, "0123456789.,", in.Variables["tessedit_char_whitelist"])
	assert.Equal(t, 300, in.DPI)
	require.NotNil(t, in.Region)
	assert.InDelta(t, 100, in.Region.Width, 1e-9)
}

func TestRegionIsEmpty(t *testing.T) {
	assert.True(t, Region{}.IsEmpty())
	assert.True(t, Region{Width: 10}.IsEmpty())
	assert.True(t, Region{Width: 10, Height: -1}.IsEmpty())
	assert.False(t, Region{Width: 1, Height: 1}.IsEmpty())
}

func encodeTestImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCrop(t *testing.T) {
	data := encodeTestImage(t, 200, 100)

	t.Run("nil region is a passthrough", func(t *testing.T) {
		out, err := Crop(data, nil)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})

	t.Run("crops to region size", func(t *testing.T) {
		out, err := Crop(data, &Region{X: 50, Y: 25, Width: 60, Height: 30})
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 60, img.Bounds().Dx())
		assert.Equal(t, 30, img.Bounds().Dy())
	})

	t.Run("region partially outside is clamped", func(t *testing.T) {
		out, err := Crop(data, &Region{X: 180, Y: 80, Width: 100, Height: 100})
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 20, img.Bounds().Dx())
		assert.Equal(t, 20, img.Bounds().Dy())
	})

	t.Run("region fully outside fails", func(t *testing.T) {
		_, err := Crop(data, &Region{X: 500, Y: 500, Width: 10, Height: 10})
		assert.Error(t, err)
	})

	t.Run("garbage image fails", func(t *testing.T) {
		_, err := Crop([]byte("not an image"), &Region{Width: 10, Height: 10})
		assert.Error(t, err)
	})
}
