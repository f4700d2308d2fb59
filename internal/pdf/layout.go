// Package pdf renders parsed QR content into themed PDF pages.
package pdf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Layout holds the fixed page geometry, in millimeters.
type Layout struct {
	MarginTop      float64
	MarginRight    float64
	MarginBottom   float64
	MarginLeft     float64
	HeaderHeight   float64
	FooterHeight   float64
	QRSize         float64
	SectionSpacing float64
}

// DefaultLayout returns the standard document geometry.
func DefaultLayout() Layout {
	return Layout{
		MarginTop:      20,
		MarginRight:    20,
		MarginBottom:   20,
		MarginLeft:     20,
		HeaderHeight:   40,
		FooterHeight:   15,
		QRSize:         80,
		SectionSpacing: 10,
	}
}

// MaxValueLength caps how much of any single value is placed in the document.
const MaxValueLength = 2000

// Sanitize strips control characters and caps the length of a value before it
// is drawn, preventing corrupt or runaway output.
func Sanitize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()
	if len(s) > MaxValueLength {
		// Back up to a rune boundary so the cut never leaves a partial
		// multi-byte sequence in the document.
		cut := MaxValueLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}
