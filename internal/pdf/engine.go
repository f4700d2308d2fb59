package pdf

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/qrforge/qrforge/internal/content"
	"github.com/qrforge/qrforge/internal/theme"
	"github.com/qrforge/qrforge/pkg/logger"
)

// Engine draws the document sections: header band, QR block, content details,
// footer. It is stateless apart from its layout geometry and safe for
// concurrent use.
type Engine struct {
	layout Layout
}

// NewEngine creates an Engine with the default layout.
func NewEngine() *Engine {
	return &Engine{layout: DefaultLayout()}
}

// NewEngineWithLayout creates an Engine with custom geometry.
func NewEngineWithLayout(layout Layout) *Engine {
	return &Engine{layout: layout}
}

// Layout returns the engine's page geometry.
func (e *Engine) Layout() Layout {
	return e.layout
}

// Render draws a complete document page set into doc. The detail section uses
// automatic page breaks; header and QR block always fit the first page. No
// drawing step aborts the page: image embed failures degrade to the in-page
// placeholder graphic.
func (e *Engine) Render(doc *gofpdf.Fpdf, qrDataURI string, parsed content.ParsedContent, th theme.Theme) {
	doc.SetMargins(e.layout.MarginLeft, e.layout.MarginTop, e.layout.MarginRight)
	doc.SetAutoPageBreak(true, e.layout.MarginBottom+e.layout.FooterHeight)
	doc.AddPage()

	e.drawHeader(doc, parsed, th)
	e.drawQRBlock(doc, qrDataURI, th)
	e.drawDetails(doc, parsed, th)
	e.drawFooter(doc, th)
}

// drawHeader renders the background-tinted title band.
func (e *Engine) drawHeader(doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	pageW, _ := doc.GetPageSize()
	bandH := e.layout.HeaderHeight + e.layout.MarginTop

	doc.SetFillColor(int(th.Background.R), int(th.Background.G), int(th.Background.B))
	doc.Rect(0, 0, pageW, bandH, "F")

	doc.SetY(e.layout.MarginTop)
	doc.SetFont("Helvetica", "B", 24)
	doc.SetTextColor(int(th.Primary.R), int(th.Primary.G), int(th.Primary.B))
	doc.CellFormat(0, 12, "QR Code Document", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 14)
	doc.SetTextColor(int(th.Accent.R), int(th.Accent.G), int(th.Accent.B))
	doc.CellFormat(0, 8, parsed.DisplayName, "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(int(th.Muted.R), int(th.Muted.G), int(th.Muted.B))
	doc.CellFormat(0, 6, time.Now().Format("January 2, 2006"), "", 1, "C", false, 0, "")

	doc.SetY(bandH + e.layout.SectionSpacing)
}

// drawQRBlock renders the centered QR image with a simulated drop shadow and
// border. Embed failures fall back to the placeholder box.
func (e *Engine) drawQRBlock(doc *gofpdf.Fpdf, qrDataURI string, th theme.Theme) {
	pageW, _ := doc.GetPageSize()
	size := e.layout.QRSize
	x := (pageW - size) / 2
	y := doc.GetY()

	// Drop shadow: an offset filled rectangle underneath.
	doc.SetFillColor(210, 210, 210)
	doc.Rect(x+2, y+2, size, size, "F")

	// Border in theme secondary color.
	doc.SetFillColor(255, 255, 255)
	doc.Rect(x, y, size, size, "F")
	doc.SetDrawColor(int(th.Secondary.R), int(th.Secondary.G), int(th.Secondary.B))
	doc.SetLineWidth(0.5)
	doc.Rect(x, y, size, size, "D")

	inset := 3.0
	if !e.embedImage(doc, qrDataURI, x+inset, y+inset, size-2*inset) {
		e.drawEmbedPlaceholder(doc, x, y, size, th)
	}

	doc.SetY(y + size + e.layout.SectionSpacing)
}

// embedImage registers the data URI's payload and draws it. Returns false if
// the payload cannot be decoded as an embeddable image.
func (e *Engine) embedImage(doc *gofpdf.Fpdf, dataURI string, x, y, size float64) bool {
	imgType, data, ok := decodeDataURI(dataURI)
	if !ok {
		return false
	}

	// Pre-decode so a broken payload degrades to the placeholder instead of
	// poisoning the document with a sticky library error.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		logger.Warn("QR image not embeddable, drawing placeholder", zap.Error(err))
		return false
	}

	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
	doc.RegisterImageOptionsReader("qr-image", opts, bytes.NewReader(data))
	if doc.Err() {
		// gofpdf parses a narrower PNG subset than image/png (no 16-bit
		// depth, no interlacing). Its error is sticky and would turn every
		// later drawing call into a no-op, so clear it before degrading to
		// the placeholder.
		logger.Warn("PDF library rejected QR image, drawing placeholder", zap.Error(doc.Error()))
		doc.ClearError()
		return false
	}
	doc.ImageOptions("qr-image", x, y, size, size, false, opts, 0, "")
	if doc.Err() {
		logger.Warn("PDF library failed to draw QR image, drawing placeholder", zap.Error(doc.Error()))
		doc.ClearError()
		return false
	}
	return true
}

// drawEmbedPlaceholder draws the in-page error box used when the QR image
// cannot be embedded.
func (e *Engine) drawEmbedPlaceholder(doc *gofpdf.Fpdf, x, y, size float64, th theme.Theme) {
	doc.SetDrawColor(160, 160, 160)
	doc.SetLineWidth(0.5)
	doc.Rect(x+8, y+8, size-16, size-16, "D")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(int(th.Muted.R), int(th.Muted.G), int(th.Muted.B))
	lines := []string{"QR Code", "Generation Error", "Please regenerate"}
	lineH := 6.0
	startY := y + size/2 - lineH*float64(len(lines))/2
	for i, line := range lines {
		doc.SetXY(x, startY+lineH*float64(i))
		doc.CellFormat(size, lineH, line, "", 0, "C", false, 0, "")
	}
}

// drawDetails renders the "Content Details" section using the type-specific
// renderer. Long values wrap and may spill to additional pages.
func (e *Engine) drawDetails(doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(int(th.Text.R), int(th.Text.G), int(th.Text.B))
	doc.CellFormat(0, 10, "Content Details", "", 1, "L", false, 0, "")
	doc.Ln(2)

	render := rendererFor(parsed.Type)
	render(e, doc, parsed, th)
}

// drawFooter renders the separator line and attribution at the bottom of the
// current page.
func (e *Engine) drawFooter(doc *gofpdf.Fpdf, th theme.Theme) {
	pageW, pageH := doc.GetPageSize()
	y := pageH - e.layout.MarginBottom - e.layout.FooterHeight

	doc.SetDrawColor(int(th.Muted.R), int(th.Muted.G), int(th.Muted.B))
	doc.SetLineWidth(0.2)
	doc.Line(e.layout.MarginLeft, y, pageW-e.layout.MarginRight, y)

	doc.SetXY(e.layout.MarginLeft, y+4)
	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(int(th.Muted.R), int(th.Muted.G), int(th.Muted.B))
	doc.CellFormat(pageW-e.layout.MarginLeft-e.layout.MarginRight, 5,
		"Generated by QRForge", "", 0, "C", false, 0, "")
}

// labelValue draws one label/value row in the detail section. Values are
// sanitized and wrapped to the content width.
func (e *Engine) labelValue(doc *gofpdf.Fpdf, th theme.Theme, label, value string) {
	if value == "" {
		return
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(int(th.Secondary.R), int(th.Secondary.G), int(th.Secondary.B))
	doc.CellFormat(40, 7, label, "", 0, "L", false, 0, "")

	pageW, _ := doc.GetPageSize()
	valueW := pageW - e.layout.MarginLeft - e.layout.MarginRight - 40

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(int(th.Text.R), int(th.Text.G), int(th.Text.B))
	doc.MultiCell(valueW, 7, Sanitize(value), "", "L", false)
}

// usageLine draws the one-line scan instruction below the detail rows.
func (e *Engine) usageLine(doc *gofpdf.Fpdf, th theme.Theme, instruction string) {
	doc.Ln(3)
	doc.SetFont("Helvetica", "I", 9)
	doc.SetTextColor(int(th.Muted.R), int(th.Muted.G), int(th.Muted.B))
	doc.MultiCell(0, 6, instruction, "", "L", false)
}

// decodeDataURI splits a data URI into its gofpdf image type and raw bytes.
func decodeDataURI(dataURI string) (string, []byte, bool) {
	idx := strings.Index(dataURI, ",")
	if idx < 0 || !strings.HasPrefix(dataURI, "data:image/") {
		return "", nil, false
	}

	header := dataURI[:idx]
	var imgType string
	switch {
	case strings.Contains(header, "image/png"):
		imgType = "PNG"
	case strings.Contains(header, "image/jpeg"), strings.Contains(header, "image/jpg"):
		imgType = "JPEG"
	default:
		return "", nil, false
	}

	data, err := base64.StdEncoding.DecodeString(dataURI[idx+1:])
	if err != nil {
		return "", nil, false
	}
	return imgType, data, true
}
