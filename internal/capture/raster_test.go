package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/snapcrop/internal/crop"
)

// testRaster builds a PNG with a solid marker block so a crop's position
// can be verified from the pixels.
func testRaster(t *testing.T, w, h int, marker image.Rectangle) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if image.Pt(x, y).In(marker) {
				c = color.NRGBA{R: 200, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRasterCrop(t *testing.T) {
	full := testRaster(t, 400, 300, image.Rect(100, 50, 200, 120))

	out, err := rasterCrop(full, crop.Rect{X: 100, Y: 50, Width: 100, Height: 70}, 1)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 70, b.Dy())

	// Every pixel inside the crop is the marker color.
	r, _, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	assert.Equal(t, uint32(200), r>>8)
	r, _, _, _ = img.At(b.Max.X-1, b.Max.Y-1).RGBA()
	assert.Equal(t, uint32(200), r>>8)
}

func TestRasterCropScalesToDevicePixels(t *testing.T) {
	// The raster is twice the CSS resolution; a CSS rect must map onto the
	// device pixels before cutting.
	full := testRaster(t, 400, 300, image.Rect(100, 50, 300, 190))

	out, err := rasterCrop(full, crop.Rect{X: 50, Y: 25, Width: 100, Height: 70}, 2)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 140, img.Bounds().Dy())

	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	assert.Equal(t, uint32(200), r>>8)
}

func TestRasterCropTrimsToRasterBounds(t *testing.T) {
	full := testRaster(t, 400, 300, image.Rectangle{})

	out, err := rasterCrop(full, crop.Rect{X: 350, Y: 250, Width: 200, Height: 200}, 1)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestRasterCropErrors(t *testing.T) {
	_, err := rasterCrop([]byte("not a png"), crop.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 1)
	assert.Error(t, err)

	full := testRaster(t, 100, 100, image.Rectangle{})
	_, err = rasterCrop(full, crop.Rect{X: 500, Y: 500, Width: 10, Height: 10}, 1)
	assert.Error(t, err)
}
