package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qrforge/qrforge/consts"
	"github.com/qrforge/qrforge/internal/model"
	"github.com/qrforge/qrforge/internal/store"
)

// AdminHandler handles admin-related HTTP requests
type AdminHandler struct {
	store store.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(s store.Store) *AdminHandler {
	return &AdminHandler{store: s}
}

// StatsResponse represents the dashboard statistics response
type StatsResponse struct {
	TodayExports   int64   `json:"today_exports"`
	RunningExports int64   `json:"running_exports"`
	TotalExports   int64   `json:"total_exports"`
	PendingCount   int64   `json:"pending_count"`
	FailedCount    int64   `json:"failed_count"`
	SuccessRate    float64 `json:"success_rate"`
	AvgDuration    int64   `json:"avg_duration"` // milliseconds, last 7 days
	TotalSizeBytes int64   `json:"total_size_bytes"`
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	exportStore := h.store.Export()

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	var stats StatsResponse

	stats.TodayExports, _ = exportStore.CountCreatedAfter(todayStart)
	stats.RunningExports, _ = exportStore.CountByStatus(model.ExportStatusRunning)
	stats.TotalExports, _ = exportStore.CountAll()
	stats.PendingCount, _ = exportStore.CountByStatus(model.ExportStatusPending)
	stats.FailedCount, _ = exportStore.CountByStatus(model.ExportStatusFailed)

	completed, _ := exportStore.CountByStatus(model.ExportStatusCompleted)
	if total := completed + stats.FailedCount; total > 0 {
		stats.SuccessRate = float64(completed) / float64(total)
	}

	avgDuration, _ := exportStore.GetAverageDurationAfter(weekAgo)
	stats.AvgDuration = int64(avgDuration)

	stats.TotalSizeBytes, _ = exportStore.SumSizeBytes()

	c.JSON(http.StatusOK, stats)
}

// ServerStatusResponse represents the server status response
type ServerStatusResponse struct {
	Version     string `json:"version"`
	BuildTime   string `json:"build_time"`
	GitCommit   string `json:"git_commit"`
	Uptime      int64  `json:"uptime"` // seconds
	StartedAt   string `json:"started_at"`
	GoVersion   string `json:"go_version"`
	MemoryUsage int64  `json:"memory_usage"` // heap alloc in bytes
}

// GetStatus handles GET /api/v1/admin/status
func (h *AdminHandler) GetStatus(c *gin.Context) {
	startedAt := consts.GetStartedAt()
	uptime := consts.GetUptime()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	c.JSON(http.StatusOK, ServerStatusResponse{
		Version:     consts.Version,
		BuildTime:   consts.BuildTime,
		GitCommit:   consts.GitCommit,
		Uptime:      int64(uptime.Seconds()),
		StartedAt:   startedAt.Format(time.RFC3339),
		GoVersion:   runtime.Version(),
		MemoryUsage: int64(memStats.Alloc),
	})
}

// AppMetaResponse represents the public application metadata response
type AppMetaResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// GetAppMeta handles GET /api/v1/meta (no auth required)
func (h *AdminHandler) GetAppMeta(c *gin.Context) {
	c.JSON(http.StatusOK, AppMetaResponse{
		Name:    consts.ProjectName,
		Version: consts.Version,
	})
}
