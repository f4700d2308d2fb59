// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qrforge/qrforge/internal/config"
	"github.com/qrforge/qrforge/internal/content"
	"github.com/qrforge/qrforge/internal/export"
	"github.com/qrforge/qrforge/internal/model"
	"github.com/qrforge/qrforge/internal/qr"
	"github.com/qrforge/qrforge/internal/store"
	"github.com/qrforge/qrforge/pkg/errors"
	"github.com/qrforge/qrforge/pkg/idgen"
	"github.com/qrforge/qrforge/pkg/logger"
	"github.com/qrforge/qrforge/pkg/telemetry"
)

// ExportHandler handles export-related HTTP requests
type ExportHandler struct {
	store     store.Store
	cfg       *config.BootstrapConfig
	assembler *export.Assembler
	// sem bounds the number of concurrent document generations
	sem chan struct{}
}

// NewExportHandler creates a new export handler
func NewExportHandler(cfg *config.BootstrapConfig, s store.Store) *ExportHandler {
	maxConcurrent := cfg.Export.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	sink := &export.DirSink{Dir: cfg.Export.OutputDir}
	return &ExportHandler{
		store:     s,
		cfg:       cfg,
		assembler: export.NewAssembler(nil, nil, sink),
		sem:       make(chan struct{}, maxConcurrent),
	}
}

// CreateExportRequest represents the request body for creating an export
type CreateExportRequest struct {
	Text      string `json:"text" binding:"required"` // content to encode in the QR code
	QRDataURI string `json:"qr_data_uri"`             // pre-rendered QR image; generated from text when empty

	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Subject     string   `json:"subject"`
	Keywords    []string `json:"keywords"`
	Password    string   `json:"password"`
	Theme       string   `json:"theme"`
	PageSize    string   `json:"page_size"`
	Orientation string   `json:"orientation"`
	QRSize      int      `json:"qr_size"`
	ErrorLevel  string   `json:"error_level"` // l, m, q, h
	Verify      bool     `json:"verify"`      // decode the generated QR and compare against text
}

// CreateExport handles POST /api/v1/exports
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	// Apply configured defaults
	if req.Theme == "" {
		req.Theme = h.cfg.Export.DefaultTheme
	}
	if req.PageSize == "" {
		req.PageSize = h.cfg.Export.PageSize
	}
	if req.Orientation == "" {
		req.Orientation = h.cfg.Export.Orientation
	}
	if req.QRSize <= 0 {
		req.QRSize = h.cfg.QR.DefaultSize
	}

	// Render the QR image when the caller did not supply one
	qrDataURI := req.QRDataURI
	var verified *bool
	if qrDataURI == "" {
		size := qr.ClampSize(req.QRSize)
		level := qr.ParseLevel(req.ErrorLevel)

		png, encErr := qr.Encode(req.Text, size, level)
		parsed := content.Parse(req.Text)
		telemetry.GetMetrics().RecordQREncode(c.Request.Context(), string(parsed.Type), encErr == nil)
		if encErr != nil {
			c.JSON(encErr.HTTPStatus(), gin.H{
				"code":    encErr.Code,
				"message": encErr.Message,
			})
			return
		}

		if req.Verify || h.cfg.QR.Verify {
			verifyErr := verifyQR(png, req.Text)
			telemetry.GetMetrics().RecordQRVerification(c.Request.Context(), verifyErr == nil)
			ok := verifyErr == nil
			verified = &ok
			// A failed round-trip check does not block the export; the
			// outcome is recorded and surfaced to the caller instead.
			if verifyErr != nil {
				logger.Warn("QR verification failed, continuing export",
					zap.String("message", verifyErr.Message))
			}
		}

		var uriErr *errors.AppError
		qrDataURI, uriErr = qr.EncodeDataURI(req.Text, size, level)
		if uriErr != nil {
			c.JSON(uriErr.HTTPStatus(), gin.H{
				"code":    uriErr.Code,
				"message": uriErr.Message,
			})
			return
		}
	}

	parsed := content.Parse(req.Text)

	// Create export record before running the pipeline
	record := &model.Export{
		ID:          idgen.NewExportID(),
		RawText:     req.Text,
		ContentType: string(parsed.Type),
		Source:      "api",
		Title:       req.Title,
		Theme:       req.Theme,
		PageSize:    req.PageSize,
		Orientation: req.Orientation,
		QRSize:      req.QRSize,
		Protected:   req.Password != "",
		Keywords:    req.Keywords,
		Verified:    verified,
		Status:      model.ExportStatusPending,
	}
	if err := h.store.Export().Create(record); err != nil {
		logger.Error("Failed to create export record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to create export",
		})
		return
	}

	// Bound concurrent generations; give up when the client goes away
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	case <-c.Request.Context().Done():
		h.store.Export().MarkFailed(record.ID, "request cancelled while waiting for a generation slot")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    errors.ErrCodeExportFailed,
			"message": "Server busy, try again later",
		})
		return
	}

	h.store.Export().MarkRunning(record.ID, time.Now())

	result := h.assembler.Generate(c.Request.Context(), qrDataURI, req.Text, export.Options{
		Title:       req.Title,
		Author:      req.Author,
		Subject:     req.Subject,
		Keywords:    req.Keywords,
		Password:    req.Password,
		PageSize:    req.PageSize,
		Orientation: req.Orientation,
		Theme:       req.Theme,
	})

	if !result.Success {
		h.store.Export().MarkFailed(record.ID, result.Error)
		logger.Warn("Export failed",
			zap.String("export_id", record.ID),
			zap.String("error", result.Error))
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeExportFailed,
			"message": result.Error,
		})
		return
	}

	if err := h.store.Export().MarkCompleted(record.ID, result.Filename, h.cfg.Export.OutputDir, result.Size); err != nil {
		logger.Error("Failed to update export record", zap.Error(err), zap.String("export_id", record.ID))
	}

	logger.Info("Export completed",
		zap.String("export_id", record.ID),
		zap.String("filename", result.Filename),
		zap.Int64("size_bytes", result.Size))

	resp := gin.H{
		"id":           record.ID,
		"status":       model.ExportStatusCompleted,
		"content_type": result.ContentType,
		"filename":     result.Filename,
		"size_bytes":   result.Size,
		"format":       result.Format,
		"download_url": "/api/v1/exports/" + record.ID + "/download",
	}
	if verified != nil {
		resp["verified"] = *verified
	}
	c.JSON(http.StatusCreated, resp)
}

// GetExport handles GET /api/v1/exports/:id
func (h *ExportHandler) GetExport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid export ID",
		})
		return
	}

	record, err := h.store.Export().GetByID(id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    errors.ErrCodeExportNotFound,
			"message": "Export not found",
		})
		return
	} else if err != nil {
		logger.Error("Database error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Database error",
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListExports handles GET /api/v1/exports
func (h *ExportHandler) ListExports(c *gin.Context) {
	page, pageSize := parsePagination(c)
	status := c.Query("status")
	contentType := c.Query("content_type")

	var (
		exports []model.Export
		total   int64
		err     error
	)
	if contentType != "" {
		exports, total, err = h.store.Export().ListByContentType(contentType, pageSize, (page-1)*pageSize)
	} else {
		exports, total, err = h.store.Export().List(status, pageSize, (page-1)*pageSize)
	}
	if err != nil {
		logger.Error("Failed to list exports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to list exports",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exports":   exports,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// DownloadExport handles GET /api/v1/exports/:id/download
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	id := c.Param("id")

	record, err := h.store.Export().GetByID(id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    errors.ErrCodeExportNotFound,
			"message": "Export not found",
		})
		return
	} else if err != nil {
		logger.Error("Database error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Database error",
		})
		return
	}

	if record.Status != model.ExportStatusCompleted || record.Filename == "" {
		c.JSON(http.StatusConflict, gin.H{
			"code":    errors.ErrCodeExportFailed,
			"message": "Export has no generated document",
		})
		return
	}

	// Path traversal guard: the filename must resolve inside the output directory
	path, ok := safeJoinPath(record.OutputDir, record.Filename)
	if !ok {
		logger.Error("Unsafe export filename",
			zap.String("export_id", record.ID),
			zap.String("filename", record.Filename))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeInternal,
			"message": "Invalid export file",
		})
		return
	}

	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    errors.ErrCodeExportNotFound,
			"message": "Export file no longer exists",
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(path))
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}

// DeleteExport handles DELETE /api/v1/exports/:id
func (h *ExportHandler) DeleteExport(c *gin.Context) {
	id := c.Param("id")

	record, err := h.store.Export().GetByID(id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    errors.ErrCodeExportNotFound,
			"message": "Export not found",
		})
		return
	} else if err != nil {
		logger.Error("Database error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Database error",
		})
		return
	}

	// Remove the generated file first, then the record
	if record.Filename != "" && record.OutputDir != "" {
		if path, ok := safeJoinPath(record.OutputDir, record.Filename); ok {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("Failed to remove export file",
					zap.String("path", path), zap.Error(err))
			}
		}
	}

	if err := h.store.Export().Delete(id); err != nil {
		logger.Error("Failed to delete export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeDBQuery,
			"message": "Failed to delete export",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Export deleted",
	})
}
