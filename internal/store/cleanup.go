// Package store provides data access operations for all models.
package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/qrforge/qrforge/pkg/logger"
)

const (
	// DefaultExportRetentionDays is the default number of days to retain exports
	DefaultExportRetentionDays = 30
	// DefaultCleanupSchedule is the cron schedule for export cleanup (daily at 3 AM)
	DefaultCleanupSchedule = "0 3 * * *"
)

// ExportCleanupService manages periodic cleanup of old export records
// and their generated files on disk.
type ExportCleanupService struct {
	store         ExportStore
	cron          *cron.Cron
	schedule      string
	retentionDays int
	entryID       cron.EntryID
	mu            sync.RWMutex
}

// NewExportCleanupService creates a new export cleanup service
func NewExportCleanupService(store ExportStore, retentionDays int, schedule string) *ExportCleanupService {
	if retentionDays <= 0 {
		retentionDays = DefaultExportRetentionDays
	}
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}

	return &ExportCleanupService{
		store:         store,
		cron:          cron.New(),
		schedule:      schedule,
		retentionDays: retentionDays,
	}
}

// Start starts the cleanup service with scheduled cleanup tasks
func (s *ExportCleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(s.schedule, s.cleanup)
	if err != nil {
		logger.Error("Failed to schedule export cleanup", zap.Error(err))
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	logger.Info("Export cleanup service started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
	)

	// Run initial cleanup immediately (non-blocking)
	go s.cleanup()

	return nil
}

// Stop stops the cleanup service gracefully
func (s *ExportCleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		logger.Info("Stopping export cleanup service")
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Export cleanup service stopped")
	}
}

// cleanup removes expired export files from disk, then deletes their records
func (s *ExportCleanupService) cleanup() {
	s.mu.RLock()
	retentionDays := s.retentionDays
	s.mu.RUnlock()

	logger.Info("Starting export cleanup",
		zap.Int("retention_days", retentionDays),
	)

	startTime := time.Now()

	// Remove generated files before dropping the records that point at them
	expired, err := s.store.ListOlderThan(retentionDays)
	if err != nil {
		logger.Error("Failed to list expired exports", zap.Error(err))
		return
	}

	removedFiles := 0
	for _, export := range expired {
		if export.Filename == "" || export.OutputDir == "" {
			continue
		}
		path := filepath.Join(export.OutputDir, export.Filename)
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Failed to remove export file",
					zap.String("path", path),
					zap.Error(err),
				)
			}
			continue
		}
		removedFiles++
	}

	deletedCount, err := s.store.DeleteOlderThan(retentionDays)
	if err != nil {
		logger.Error("Failed to cleanup old exports",
			zap.Int("retention_days", retentionDays),
			zap.Error(err),
		)
		return
	}

	duration := time.Since(startTime)
	logger.Info("Export cleanup completed",
		zap.Int64("deleted_count", deletedCount),
		zap.Int("removed_files", removedFiles),
		zap.Int("retention_days", retentionDays),
		zap.Duration("duration", duration),
	)
}

// SetRetentionDays updates the retention period (takes effect on next cleanup)
func (s *ExportCleanupService) SetRetentionDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		days = DefaultExportRetentionDays
	}

	s.retentionDays = days
	logger.Info("Export retention days updated",
		zap.Int("retention_days", days),
	)
}
