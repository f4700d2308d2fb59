package imaging

import (
	"encoding/base64"
	"image"
	"strings"

	"go.uber.org/zap"

	"github.com/qrforge/qrforge/pkg/logger"
)

// DefaultMaxSizeBytes is the input-size ceiling applied before any conversion
// is attempted.
const DefaultMaxSizeBytes = 10 * 1024 * 1024

// Conversion methods reported in ConversionResult.
const (
	MethodNoConversion  = "no-conversion-needed"
	MethodReencode      = "re-encode"
	MethodErrorFallback = "error-fallback"
)

// ConvertOptions controls ConvertForPDF behavior. Zero values select the
// defaults: PNG output, 10 MB ceiling, fallback enabled.
type ConvertOptions struct {
	TargetFormat    string // png or jpeg
	MaxSizeBytes    int
	FallbackEnabled *bool
}

// ConversionResult is the outcome of a single conversion call.
type ConversionResult struct {
	Success bool   `json:"success"`
	DataURI string `json:"data_uri,omitempty"`
	Format  string `json:"format,omitempty"`
	Method  string `json:"method,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Converter turns arbitrary image data URIs into PDF-embeddable PNG or JPEG
// data URIs. The zero-value Converter is not usable; construct via NewConverter.
type Converter struct {
	codec Codec
}

// NewConverter creates a Converter. A nil codec selects the default raster codec.
func NewConverter(codec Codec) *Converter {
	if codec == nil {
		codec = DefaultCodec()
	}
	return &Converter{codec: codec}
}

// ConvertForPDF validates dataURI and produces an image safe to embed in a PDF.
// Invalid, corrupted, oversized, or undecodable input is replaced by the
// generated placeholder graphic when fallback is enabled; the call never
// returns an error in that mode, only a ConversionResult.
func (c *Converter) ConvertForPDF(dataURI string, opts ConvertOptions) ConversionResult {
	target := normalizeTarget(opts.TargetFormat)
	maxSize := opts.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	fallback := true
	if opts.FallbackEnabled != nil {
		fallback = *opts.FallbackEnabled
	}

	report := Validate(dataURI)

	if !report.IsValid || report.IsCorrupted {
		reason := "image data failed validation"
		if len(report.Errors) > 0 {
			reason = report.Errors[0]
		}
		return c.fallbackOrFail(target, fallback, reason)
	}

	if report.SizeBytes > maxSize {
		logger.Warn("Image exceeds size ceiling, substituting placeholder",
			zap.Int("size_bytes", report.SizeBytes),
			zap.Int("max_bytes", maxSize))
		return c.fallbackOrFail(target, fallback, "image exceeds maximum allowed size")
	}

	// Valid PNG already in the target format needs no work. WebP never takes
	// this path: the PDF library cannot embed it, so it is always re-encoded.
	if report.Format == "png" && target == "png" {
		return ConversionResult{
			Success: true,
			DataURI: dataURI,
			Format:  "png",
			Method:  MethodNoConversion,
		}
	}

	payload := dataURI[strings.Index(dataURI, ",")+1:]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return c.fallbackOrFail(target, fallback, "invalid base64 payload")
	}

	img, err := c.codec.Decode(decoded, report.Format)
	if err != nil {
		logger.Warn("Image decode failed, substituting placeholder",
			zap.String("format", report.Format),
			zap.Error(err))
		return c.fallbackOrFail(target, fallback, "image decode failed: "+err.Error())
	}

	encoded, err := c.encode(img, target)
	if err != nil {
		return c.fallbackOrFail(target, fallback, "image encode failed: "+err.Error())
	}

	return ConversionResult{
		Success: true,
		DataURI: EncodeDataURI(target, encoded),
		Format:  target,
		Method:  MethodReencode,
	}
}

// fallbackOrFail produces the placeholder graphic in the target format, or a
// failed result when fallback is disabled.
func (c *Converter) fallbackOrFail(target string, fallback bool, reason string) ConversionResult {
	if !fallback {
		return ConversionResult{
			Success: false,
			Error:   reason,
		}
	}

	encoded, err := c.encode(Placeholder(), target)
	if err != nil {
		// Placeholder encoding uses in-memory drawing only; failure here means
		// the codec itself is broken.
		return ConversionResult{
			Success: false,
			Error:   "placeholder generation failed: " + err.Error(),
		}
	}

	return ConversionResult{
		Success: true,
		DataURI: EncodeDataURI(target, encoded),
		Format:  target,
		Method:  MethodErrorFallback,
		Error:   reason,
	}
}

func (c *Converter) encode(img image.Image, target string) ([]byte, error) {
	if target == "jpeg" {
		return c.codec.EncodeJPEG(img)
	}
	return c.codec.EncodePNG(img)
}

// normalizeTarget maps the requested format to a PDF-embeddable one.
// WebP is always coerced to PNG since the PDF library has no WebP support.
func normalizeTarget(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "jpeg"
	default:
		return "png"
	}
}

// EncodeDataURI wraps encoded image bytes as a base64 data URI.
func EncodeDataURI(format string, data []byte) string {
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data)
}
