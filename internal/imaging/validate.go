// Package imaging validates base64 image data URIs and converts them into
// formats safe to embed in PDF documents. Corrupted or undecodable input is
// replaced by a generated placeholder graphic rather than failing the export.
package imaging

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// minPayloadChars is the corruption floor: base64 payloads shorter than this
// cannot hold a real QR image and are flagged corrupted unconditionally.
const minPayloadChars = 100

// pngMarkerWindow is how many decoded bytes are scanned for the PNG marker.
const pngMarkerWindow = 75

// pngSignature is the fixed 8-byte header every valid PNG file starts with.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

var mimeRe = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64$`)

// ValidationReport describes the outcome of inspecting an image data URI.
type ValidationReport struct {
	IsValid     bool     `json:"is_valid"`
	Format      string   `json:"format"`    // png, jpeg, webp, ...
	MIMEType    string   `json:"mime_type"` // image/png, ...
	SizeBytes   int      `json:"size_bytes"`
	IsCorrupted bool     `json:"is_corrupted"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Validate inspects a data URI and reports whether it holds a renderable image.
// Checks run in order: non-empty, data: prefix, header/payload split, MIME type,
// base64 round-trip, then format-specific corruption heuristics.
func Validate(dataURI string) ValidationReport {
	report := ValidationReport{}

	if dataURI == "" {
		report.Errors = append(report.Errors, "image data is empty")
		return report
	}

	if !strings.HasPrefix(dataURI, "data:") {
		report.Errors = append(report.Errors, "not a data URI")
		return report
	}

	idx := strings.Index(dataURI, ",")
	if idx < 0 {
		report.Errors = append(report.Errors, "malformed data URI: missing payload separator")
		return report
	}
	header := dataURI[:idx]
	payload := dataURI[idx+1:]

	m := mimeRe.FindStringSubmatch(header)
	if m == nil {
		report.Errors = append(report.Errors, "unsupported data URI header: "+header)
		return report
	}
	report.MIMEType = m[1]
	report.Format = strings.TrimPrefix(m[1], "image/")
	if report.Format == "jpg" {
		report.Format = "jpeg"
	}

	// Estimated decoded size from the base64 length.
	report.SizeBytes = (len(payload)*3 + 3) / 4

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		report.Errors = append(report.Errors, "invalid base64 payload")
		report.IsCorrupted = true
		return report
	}

	// Round-trip check catches payloads with stray padding or whitespace.
	if base64.StdEncoding.EncodeToString(decoded) != payload {
		report.Warnings = append(report.Warnings, "base64 payload did not round-trip cleanly")
	}

	if len(payload) < minPayloadChars {
		report.IsCorrupted = true
		report.Errors = append(report.Errors, "payload too short to be a valid image")
		return report
	}

	if report.Format == "png" && !pngLooksValid(decoded) {
		report.IsCorrupted = true
		report.Errors = append(report.Errors, "PNG data appears corrupted")
		return report
	}

	report.IsValid = true
	return report
}

// pngLooksValid applies the PNG corruption heuristic: the literal "PNG" marker
// must appear within the first decoded bytes. When the payload is long enough
// the fixed 8-byte PNG signature is checked as well.
func pngLooksValid(decoded []byte) bool {
	window := decoded
	if len(window) > pngMarkerWindow {
		window = window[:pngMarkerWindow]
	}
	if !strings.Contains(string(window), "PNG") {
		return false
	}
	if len(decoded) >= len(pngSignature) {
		for i, b := range pngSignature {
			if decoded[i] != b {
				return false
			}
		}
	}
	return true
}
