// Package qr generates QR code images from raw payload text.
package qr

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/qrforge/qrforge/internal/imaging"
	"github.com/qrforge/qrforge/pkg/errors"
)

// Size bounds for generated QR images, in pixels.
const (
	MinSize     = 128
	MaxSize     = 2048
	DefaultSize = 512
)

// MaxTextLength is the longest payload a QR code can hold at the lowest
// error-correction level (version 40, binary mode).
const MaxTextLength = 2953

// ParseLevel maps a config string to a recovery level. Unknown values
// select Medium.
func ParseLevel(s string) qrcode.RecoveryLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return qrcode.Low
	case "q", "quartile":
		return qrcode.High
	case "h", "highest":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// ClampSize bounds a requested pixel size to the supported range.
// Zero and negative values select the default size.
func ClampSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// Encode renders text as a PNG QR image of the given pixel size.
func Encode(text string, size int, level qrcode.RecoveryLevel) ([]byte, *errors.AppError) {
	if text == "" {
		return nil, errors.New(errors.ErrCodeQREncode, "QR content cannot be empty")
	}
	if len(text) > MaxTextLength {
		return nil, errors.New(errors.ErrCodeQRTooLong,
			"QR content exceeds the maximum encodable length")
	}

	png, err := qrcode.Encode(text, level, ClampSize(size))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQREncode, "failed to encode QR code", err)
	}
	return png, nil
}

// EncodeDataURI renders text as a QR image and wraps it as a PNG data URI,
// the form the document pipeline consumes.
func EncodeDataURI(text string, size int, level qrcode.RecoveryLevel) (string, *errors.AppError) {
	png, err := Encode(text, size, level)
	if err != nil {
		return "", err
	}
	return imaging.EncodeDataURI("png", png), nil
}
