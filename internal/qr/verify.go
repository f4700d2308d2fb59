package qr

import (
	"bytes"
	"image"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/qrforge/qrforge/pkg/errors"
)

// Verify decodes a generated QR PNG and checks that it round-trips back to
// the original text. Verification failure is reported to callers as a
// warning, not an export failure.
func Verify(png []byte, expectedText string) *errors.AppError {
	img, _, err := image.Decode(bytes.NewReader(png))
	if err != nil {
		return errors.Wrap(errors.ErrCodeQRVerify, "failed to decode QR image", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQRVerify, "failed to binarize QR image", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQRVerify, "failed to read QR code", err)
	}

	if result.GetText() != expectedText {
		return errors.New(errors.ErrCodeQRVerify, "decoded QR text does not match input")
	}

	return nil
}
