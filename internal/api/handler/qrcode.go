// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qrforge/qrforge/internal/config"
	"github.com/qrforge/qrforge/internal/content"
	"github.com/qrforge/qrforge/internal/qr"
	"github.com/qrforge/qrforge/pkg/errors"
	"github.com/qrforge/qrforge/pkg/logger"
	"github.com/qrforge/qrforge/pkg/telemetry"
)

// verifyQR runs the QR round-trip check. Package variable so tests can
// substitute the decoder.
var verifyQR = qr.Verify

// QRCodeHandler handles QR encoding and content parsing requests
type QRCodeHandler struct {
	cfg *config.BootstrapConfig
}

// NewQRCodeHandler creates a new QR code handler
func NewQRCodeHandler(cfg *config.BootstrapConfig) *QRCodeHandler {
	return &QRCodeHandler{cfg: cfg}
}

// PreviewRequest represents the request body for a QR preview
type PreviewRequest struct {
	Text       string `json:"text" binding:"required"`
	Size       int    `json:"size"`
	ErrorLevel string `json:"error_level"` // l, m, q, h
	Verify     bool   `json:"verify"`
}

// Preview handles POST /api/v1/qrcodes/preview.
// It renders the QR image as a PNG data URI without producing a document.
func (h *QRCodeHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	if req.Size <= 0 {
		req.Size = h.cfg.QR.DefaultSize
	}
	size := qr.ClampSize(req.Size)
	level := qr.ParseLevel(req.ErrorLevel)

	parsed := content.Parse(req.Text)

	png, encErr := qr.Encode(req.Text, size, level)
	telemetry.GetMetrics().RecordQREncode(c.Request.Context(), string(parsed.Type), encErr == nil)
	if encErr != nil {
		c.JSON(encErr.HTTPStatus(), gin.H{
			"code":    encErr.Code,
			"message": encErr.Message,
		})
		return
	}

	var verified *bool
	if req.Verify || h.cfg.QR.Verify {
		verifyErr := verifyQR(png, req.Text)
		telemetry.GetMetrics().RecordQRVerification(c.Request.Context(), verifyErr == nil)
		ok := verifyErr == nil
		verified = &ok
		// A failed round-trip check is reported, not treated as an error.
		if verifyErr != nil {
			logger.Warn("QR verification failed",
				zap.String("message", verifyErr.Message))
		}
	}

	dataURI, uriErr := qr.EncodeDataURI(req.Text, size, level)
	if uriErr != nil {
		c.JSON(uriErr.HTTPStatus(), gin.H{
			"code":    uriErr.Code,
			"message": uriErr.Message,
		})
		return
	}

	resp := gin.H{
		"data_uri":     dataURI,
		"size":         size,
		"content_type": parsed.Type,
		"display_name": parsed.DisplayName,
	}
	if verified != nil {
		resp["verified"] = *verified
	}
	c.JSON(http.StatusOK, resp)
}

// ParseRequest represents the request body for content parsing
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// Parse handles POST /api/v1/qrcodes/parse.
// It classifies the text and returns the extracted fields.
func (h *QRCodeHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, content.Parse(req.Text))
}

// ContentTypes handles GET /api/v1/qrcodes/content-types.
// Returns all supported content types with their display names.
func (h *QRCodeHandler) ContentTypes(c *gin.Context) {
	types := content.AllTypes()
	out := make([]gin.H, 0, len(types))
	for _, t := range types {
		out = append(out, gin.H{
			"type":         t,
			"display_name": t.DisplayName(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"content_types": out,
	})
}
