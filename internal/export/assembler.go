// Package export orchestrates the QR-to-PDF pipeline: content parsing, theme
// resolution, image conversion, document layout, and delivery to a Sink.
package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/qrforge/qrforge/consts"
	"github.com/qrforge/qrforge/internal/content"
	"github.com/qrforge/qrforge/internal/imaging"
	"github.com/qrforge/qrforge/internal/pdf"
	"github.com/qrforge/qrforge/internal/theme"
	"github.com/qrforge/qrforge/pkg/logger"
	"github.com/qrforge/qrforge/pkg/telemetry"
)

// MaxOutputBytes is the ceiling on generated document size. Oversized results
// are discarded and reported as failures.
const MaxOutputBytes = 50 * 1024 * 1024

// DefaultFilenameTitle is used when no usable title is supplied.
const DefaultFilenameTitle = "qr-document"

// Options are the caller-supplied document settings. All fields are optional.
type Options struct {
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	Subject     string   `json:"subject,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Password    string   `json:"password,omitempty"`
	PageSize    string   `json:"page_size,omitempty"`    // a4, letter, legal
	Orientation string   `json:"orientation,omitempty"`  // portrait, landscape
	Theme       string   `json:"theme,omitempty"`        // modern, elegant, professional
}

// Result is the outcome of a single Generate call. On failure, Error carries
// the human-readable reason and no file has been delivered to the Sink.
type Result struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Format      string `json:"format"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Assembler sequences the document pipeline. It is stateless across calls and
// safe for concurrent use.
type Assembler struct {
	converter *imaging.Converter
	engine    *pdf.Engine
	sink      Sink
}

// NewAssembler creates an Assembler. Nil converter or engine select defaults;
// sink is required.
func NewAssembler(converter *imaging.Converter, engine *pdf.Engine, sink Sink) *Assembler {
	if converter == nil {
		converter = imaging.NewConverter(nil)
	}
	if engine == nil {
		engine = pdf.NewEngine()
	}
	return &Assembler{converter: converter, engine: engine, sink: sink}
}

// Generate runs the full pipeline: input checks, security scan, parsing, theme
// and option validation, image conversion, layout, serialization, size
// enforcement, and delivery. All internal errors are flattened into the Result;
// nothing escapes this boundary.
func (a *Assembler) Generate(ctx context.Context, qrDataURI, rawText string, opts Options) Result {
	ctx, span := telemetry.StartSpan(ctx, "export.generate")
	defer span.End()
	start := time.Now()

	// Record the start before the pipeline runs so the started/completed
	// counter pair reflects in-flight work.
	metrics := telemetry.GetMetrics()
	metrics.RecordExportStarted(ctx, opts.Theme, string(content.Parse(rawText).Type))

	parsed, result := a.generate(ctx, qrDataURI, rawText, opts)

	status := "completed"
	if !result.Success {
		status = "failed"
		telemetry.SetSpanError(span, fmt.Errorf("%s", result.Error))
	} else {
		telemetry.SetSpanOK(span)
	}
	metrics.RecordExportCompleted(ctx, status, result.Size, time.Since(start).Seconds())
	telemetry.SetSpanAttributes(span,
		telemetry.AttrContentType.String(string(parsed.Type)),
		telemetry.AttrOutputBytes.Int64(result.Size),
	)

	return result
}

func (a *Assembler) generate(ctx context.Context, qrDataURI, rawText string, opts Options) (content.ParsedContent, Result) {
	var parsed content.ParsedContent

	// Required inputs
	if qrDataURI == "" {
		return parsed, fail("QR image data is required")
	}
	if strings.TrimSpace(rawText) == "" {
		return parsed, fail("QR content text is required")
	}

	// Input security scan before anything is rendered
	if reason := checkRawText(rawText); reason != "" {
		logger.Warn("Export rejected by input security scan", zap.String("reason", reason))
		return parsed, fail(reason)
	}

	parsed = content.Parse(rawText)

	// Option validation is fail-fast: unknown values are errors here, not
	// silent fallbacks.
	themeName := opts.Theme
	if themeName == "" {
		themeName = theme.DefaultName
	}
	th, ok := theme.Lookup(themeName)
	if !ok {
		return parsed, fail(fmt.Sprintf("invalid theme %q: must be one of %s",
			opts.Theme, strings.Join(theme.Names(), ", ")))
	}

	pageSize, ok := resolvePageSize(opts.PageSize)
	if !ok {
		return parsed, fail(fmt.Sprintf("invalid page size %q: must be one of a4, letter, legal", opts.PageSize))
	}
	orientation, ok := resolveOrientation(opts.Orientation)
	if !ok {
		return parsed, fail(fmt.Sprintf("invalid orientation %q: must be portrait or landscape", opts.Orientation))
	}

	// Ensure the image is embeddable; corrupted input degrades to the
	// placeholder rather than failing the export.
	conv := a.converter.ConvertForPDF(qrDataURI, imaging.ConvertOptions{TargetFormat: "png"})
	if !conv.Success {
		return parsed, fail("image conversion failed: " + conv.Error)
	}

	doc := gofpdf.New(orientation, "mm", pageSize, "")
	doc.SetTitle(metaOrDefault(opts.Title, "QR Code Document"), true)
	doc.SetAuthor(metaOrDefault(opts.Author, consts.ProjectName), true)
	doc.SetSubject(metaOrDefault(opts.Subject, parsed.DisplayName), true)
	doc.SetKeywords(strings.Join(opts.Keywords, " "), true)
	doc.SetCreator(consts.ProjectName, true)
	if opts.Password != "" {
		doc.SetProtection(gofpdf.CnProtectPrint|gofpdf.CnProtectCopy, opts.Password, "")
	}

	a.engine.Render(doc, conv.DataURI, parsed, th)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return parsed, fail("document serialization failed: " + err.Error())
	}

	if buf.Len() > MaxOutputBytes {
		return parsed, fail("generated document exceeds the maximum allowed size")
	}

	filename := buildFilename(parsed.Type, opts.Title, time.Now().UTC())
	if err := a.sink.Write(ctx, filename, buf.Bytes()); err != nil {
		return parsed, fail("failed to deliver document: " + err.Error())
	}

	logger.Info("Export completed",
		zap.String("filename", filename),
		zap.String("content_type", string(parsed.Type)),
		zap.Int("size_bytes", buf.Len()))

	return parsed, Result{
		Success:     true,
		Filename:    filename,
		Size:        int64(buf.Len()),
		Format:      consts.FormatPDF,
		ContentType: string(parsed.Type),
	}
}

func fail(message string) Result {
	return Result{
		Success: false,
		Format:  consts.FormatPDF,
		Error:   message,
	}
}

func metaOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// resolvePageSize maps the option enum to the PDF library's page-size name.
func resolvePageSize(size string) (string, bool) {
	switch strings.ToLower(size) {
	case "", "a4":
		return "A4", true
	case "letter":
		return "Letter", true
	case "legal":
		return "Legal", true
	default:
		return "", false
	}
}

// resolveOrientation maps the option enum to the PDF library's orientation code.
func resolveOrientation(orientation string) (string, bool) {
	switch strings.ToLower(orientation) {
	case "", "portrait":
		return "P", true
	case "landscape":
		return "L", true
	default:
		return "", false
	}
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeTitle turns a document title into a filename-safe slug.
func sanitizeTitle(title string) string {
	slug := filenameUnsafe.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	if slug == "" {
		return DefaultFilenameTitle
	}
	return slug
}

// buildFilename computes `<contentType>-<sanitizedTitle|qr-document>-<timestamp>.pdf`.
// Timestamp colons are replaced for filesystem safety.
func buildFilename(t content.Type, title string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s.pdf", t, sanitizeTitle(title), now.Format("2006-01-02T15-04-05Z"))
}
