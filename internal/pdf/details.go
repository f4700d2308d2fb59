package pdf

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/qrforge/qrforge/internal/content"
	"github.com/qrforge/qrforge/internal/theme"
)

// detailRenderer draws the type-specific detail block for one content type.
type detailRenderer func(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme)

// detailRenderers maps every content type to its renderer. The parser's type
// set and this table must stay in sync; init verifies the coverage so a new
// content type without a renderer fails immediately at startup.
var detailRenderers = map[content.Type]detailRenderer{
	content.TypeEmail:    renderEmail,
	content.TypeWiFi:     renderWiFi,
	content.TypePhone:    renderPhone,
	content.TypeSMS:      renderSMS,
	content.TypeURL:      renderURL,
	content.TypeVCard:    renderVCard,
	content.TypeEvent:    renderEvent,
	content.TypeLocation: renderLocation,
	content.TypeText:     renderText,
}

func init() {
	for _, t := range content.AllTypes() {
		if _, ok := detailRenderers[t]; !ok {
			panic(fmt.Sprintf("pdf: no detail renderer registered for content type %q", t))
		}
	}
}

// rendererFor returns the renderer for a content type, defaulting to the
// plain-text renderer for anything unrecognized.
func rendererFor(t content.Type) detailRenderer {
	if r, ok := detailRenderers[t]; ok {
		return r
	}
	return renderText
}

func renderEmail(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Email Address", parsed.Data["email"])
	e.labelValue(doc, th, "Subject", parsed.Data["subject"])
	e.labelValue(doc, th, "Message", parsed.Data["body"])
	e.usageLine(doc, th, "Scan this QR code to compose an email.")
}

func renderWiFi(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Network Name", parsed.Data["ssid"])
	e.labelValue(doc, th, "Security", parsed.Data["security"])
	e.labelValue(doc, th, "Password", parsed.Data["password"])
	if hidden := parsed.Data["hidden"]; hidden == "true" {
		e.labelValue(doc, th, "Hidden Network", "Yes")
	}
	e.usageLine(doc, th, "Scan this QR code to connect to this WiFi network.")
}

func renderPhone(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Phone Number", parsed.Data["phone"])
	e.usageLine(doc, th, "Scan this QR code to call this number.")
}

func renderSMS(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Phone Number", parsed.Data["phone"])
	e.labelValue(doc, th, "Message", parsed.Data["message"])
	e.usageLine(doc, th, "Scan this QR code to send a text message.")
}

func renderURL(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Website", parsed.Data["url"])
	e.labelValue(doc, th, "Domain", parsed.Data["domain"])
	e.labelValue(doc, th, "Protocol", parsed.Data["protocol"])
	e.usageLine(doc, th, "Scan this QR code to open this website.")
}

func renderVCard(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Name", parsed.Data["name"])
	e.labelValue(doc, th, "Phone", parsed.Data["phone"])
	e.labelValue(doc, th, "Email", parsed.Data["email"])
	e.labelValue(doc, th, "Organization", parsed.Data["organization"])
	e.labelValue(doc, th, "Title", parsed.Data["title"])
	e.labelValue(doc, th, "Website", parsed.Data["website"])
	e.usageLine(doc, th, "Scan this QR code to save this contact.")
}

func renderEvent(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Event", parsed.Data["summary"])
	e.labelValue(doc, th, "Starts", parsed.Data["start"])
	e.labelValue(doc, th, "Location", parsed.Data["location"])
	e.labelValue(doc, th, "Description", parsed.Data["description"])
	e.usageLine(doc, th, "Scan this QR code to add this event to your calendar.")
}

func renderLocation(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Coordinates", parsed.Data["coordinates"])
	e.labelValue(doc, th, "Address", parsed.Data["address"])
	e.usageLine(doc, th, "Scan this QR code to open this location in maps.")
}

func renderText(e *Engine, doc *gofpdf.Fpdf, parsed content.ParsedContent, th theme.Theme) {
	e.labelValue(doc, th, "Content", parsed.Data["content"])
	e.usageLine(doc, th, "Scan this QR code to view this text.")
}
