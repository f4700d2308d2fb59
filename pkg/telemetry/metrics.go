// Package telemetry provides OpenTelemetry integration for the application.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/qrforge/qrforge/pkg/logger"
)

const (
	// MeterName is the default meter name for the application
	MeterName = "github.com/qrforge/qrforge"
)

// Metrics holds all application metrics
type Metrics struct {
	// Export metrics
	ExportsTotal    metric.Int64Counter
	ExportDuration  metric.Float64Histogram
	ActiveExports   metric.Int64UpDownCounter
	ExportsByStatus metric.Int64Counter
	ExportBytes     metric.Int64Histogram

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// QR metrics
	QREncodesTotal  metric.Int64Counter
	QREncodeErrors  metric.Int64Counter
	QRVerifications metric.Int64Counter

	// Image metrics
	ImageConversionsTotal metric.Int64Counter
	ImageConversionErrors metric.Int64Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			// Return empty metrics to avoid nil pointer
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

// initMetrics initializes all application metrics
func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}

	var err error

	// Export metrics
	m.ExportsTotal, err = meter.Int64Counter(
		"qrforge_exports_total",
		metric.WithDescription("Total number of document exports"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, err
	}

	m.ExportDuration, err = meter.Float64Histogram(
		"qrforge_export_duration_seconds",
		metric.WithDescription("Duration of document exports in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	m.ActiveExports, err = meter.Int64UpDownCounter(
		"qrforge_active_exports",
		metric.WithDescription("Number of currently running exports"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, err
	}

	m.ExportsByStatus, err = meter.Int64Counter(
		"qrforge_exports_by_status_total",
		metric.WithDescription("Total number of exports by status"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, err
	}

	m.ExportBytes, err = meter.Int64Histogram(
		"qrforge_export_bytes",
		metric.WithDescription("Size of generated documents in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1024, 10240, 102400, 1048576, 10485760, 52428800),
	)
	if err != nil {
		return nil, err
	}

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"qrforge_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"qrforge_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	// QR metrics
	m.QREncodesTotal, err = meter.Int64Counter(
		"qrforge_qr_encodes_total",
		metric.WithDescription("Total number of QR code encode operations"),
		metric.WithUnit("{encode}"),
	)
	if err != nil {
		return nil, err
	}

	m.QREncodeErrors, err = meter.Int64Counter(
		"qrforge_qr_encode_errors_total",
		metric.WithDescription("Total number of QR code encode errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.QRVerifications, err = meter.Int64Counter(
		"qrforge_qr_verifications_total",
		metric.WithDescription("Total number of QR code decode verifications"),
		metric.WithUnit("{verification}"),
	)
	if err != nil {
		return nil, err
	}

	// Image metrics
	m.ImageConversionsTotal, err = meter.Int64Counter(
		"qrforge_image_conversions_total",
		metric.WithDescription("Total number of image conversion operations"),
		metric.WithUnit("{conversion}"),
	)
	if err != nil {
		return nil, err
	}

	m.ImageConversionErrors, err = meter.Int64Counter(
		"qrforge_image_conversion_errors_total",
		metric.WithDescription("Total number of image conversion errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("Metrics initialized successfully")
	return m, nil
}

// RecordExportStarted records that an export has started
func (m *Metrics) RecordExportStarted(ctx context.Context, theme, contentType string) {
	if m.ExportsTotal == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("theme", theme),
			attribute.String("content_type", contentType),
		),
	)
	if m.ActiveExports != nil {
		m.ActiveExports.Add(ctx, 1)
	}
}

// RecordExportCompleted records that an export has completed
func (m *Metrics) RecordExportCompleted(ctx context.Context, status string, sizeBytes int64, durationSeconds float64) {
	if m.ActiveExports != nil {
		m.ActiveExports.Add(ctx, -1)
	}
	if m.ExportsByStatus != nil {
		m.ExportsByStatus.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
	if m.ExportDuration != nil {
		m.ExportDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
	if sizeBytes > 0 && m.ExportBytes != nil {
		m.ExportBytes.Record(ctx, sizeBytes)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}

// RecordQREncode records a QR encode operation
func (m *Metrics) RecordQREncode(ctx context.Context, contentType string, success bool) {
	if m.QREncodesTotal != nil {
		m.QREncodesTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("content_type", contentType),
				attribute.Bool("success", success),
			),
		)
	}
	if !success && m.QREncodeErrors != nil {
		m.QREncodeErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("content_type", contentType)),
		)
	}
}

// RecordQRVerification records a QR decode verification
func (m *Metrics) RecordQRVerification(ctx context.Context, success bool) {
	if m.QRVerifications == nil {
		return
	}
	m.QRVerifications.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("success", success)),
	)
}

// RecordImageConversion records an image conversion operation
func (m *Metrics) RecordImageConversion(ctx context.Context, sourceFormat string, success bool) {
	if m.ImageConversionsTotal != nil {
		m.ImageConversionsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("source_format", sourceFormat),
				attribute.Bool("success", success),
			),
		)
	}
	if !success && m.ImageConversionErrors != nil {
		m.ImageConversionErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("source_format", sourceFormat)),
		)
	}
}
