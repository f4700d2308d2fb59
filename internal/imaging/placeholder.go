package imaging

import (
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// placeholderSize is the pixel dimension of the generated error graphic.
const placeholderSize = 512

// placeholderLines is the text stack drawn in the center of the error graphic.
var placeholderLines = []string{"QR Code", "Generation Error", "Please regenerate"}

// Placeholder renders the substitute graphic used when real image data cannot
// be embedded: a light gray square with a border and a centered error message.
func Placeholder() image.Image {
	dc := gg.NewContext(placeholderSize, placeholderSize)

	// Background
	dc.SetRGB255(245, 245, 245)
	dc.Clear()

	// Border rectangle
	dc.SetRGB255(160, 160, 160)
	dc.SetLineWidth(4)
	dc.DrawRectangle(16, 16, placeholderSize-32, placeholderSize-32)
	dc.Stroke()

	// Centered text stack
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB255(96, 96, 96)
	lineHeight := 28.0
	startY := placeholderSize/2 - lineHeight*float64(len(placeholderLines)-1)/2
	for i, line := range placeholderLines {
		dc.DrawStringAnchored(line, placeholderSize/2, startY+lineHeight*float64(i), 0.5, 0.5)
	}

	return dc.Image()
}
