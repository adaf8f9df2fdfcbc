package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/go-scripts/snapcrop/internal/crop"
)

// rasterCrop cuts the rectangle out of a full-page PNG. The rectangle is in
// CSS pixels; the raster was produced at dpr, so the clip is scaled to
// device pixels and trimmed to the raster's actual bounds before cutting.
func rasterCrop(full []byte, r crop.Rect, dpr float64) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(full))
	if err != nil {
		return nil, fmt.Errorf("decode full capture: %w", err)
	}

	dev := crop.Scale(r, dpr)
	clip := image.Rect(int(dev.X), int(dev.Y), int(dev.Right()), int(dev.Bottom())).
		Intersect(img.Bounds())
	if clip.Empty() {
		return nil, fmt.Errorf("clip %+v outside raster %v", dev, img.Bounds())
	}

	sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("raster type %T does not support cropping", img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(clip)); err != nil {
		return nil, fmt.Errorf("encode cropped capture: %w", err)
	}
	return buf.Bytes(), nil
}
