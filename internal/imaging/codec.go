package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/webp"
)

// jpegQuality is the encode quality used for JPEG output. A white background
// is composited first so transparency does not turn black.
const jpegQuality = 90

// Codec decodes and re-encodes raster images. It is an injection point: the
// default implementation uses the Go image packages, and placeholder-only
// environments can substitute one that always fails decode so every
// conversion takes the fallback path.
type Codec interface {
	Decode(data []byte, format string) (image.Image, error)
	EncodePNG(img image.Image) ([]byte, error)
	EncodeJPEG(img image.Image) ([]byte, error)
}

// rasterCodec is the default Codec backed by image/png, image/jpeg and
// golang.org/x/image/webp.
type rasterCodec struct{}

// DefaultCodec returns the standard raster codec.
func DefaultCodec() Codec {
	return rasterCodec{}
}

func (rasterCodec) Decode(data []byte, format string) (image.Image, error) {
	switch format {
	case "png":
		return png.Decode(bytes.NewReader(data))
	case "jpeg":
		return jpeg.Decode(bytes.NewReader(data))
	case "webp":
		return webp.Decode(bytes.NewReader(data))
	default:
		// Fall back to the registered-format sniffer for anything else.
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unsupported image format %q: %w", format, err)
		}
		return img, nil
	}
}

func (rasterCodec) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (rasterCodec) EncodeJPEG(img image.Image) ([]byte, error) {
	// Composite over white so transparent regions render correctly.
	bounds := img.Bounds()
	flattened := image.NewRGBA(bounds)
	draw.Draw(flattened, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flattened, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattened, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
