package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/qrforge/qrforge/internal/model"
)

// ExportStore defines operations for Export models.
type ExportStore interface {
	// Export CRUD
	Create(export *model.Export) error
	GetByID(id string) (*model.Export, error)
	Update(export *model.Export) error
	Save(export *model.Export) error
	Delete(id string) error

	// Export status updates
	UpdateStatus(id string, status model.ExportStatus) error
	MarkRunning(id string, startedAt time.Time) error
	MarkCompleted(id, filename, outputDir string, sizeBytes int64) error
	MarkFailed(id, errMsg string) error

	// Export queries
	List(statusFilter string, limit, offset int) ([]model.Export, int64, error)
	ListByContentType(contentType string, limit, offset int) ([]model.Export, int64, error)
	ListByStatus(status model.ExportStatus) ([]model.Export, error)
	ListOlderThan(days int) ([]model.Export, error)

	// Retention cleanup
	DeleteOlderThan(days int) (int64, error)

	// Statistics queries
	CountAll() (int64, error)
	CountByStatus(status model.ExportStatus) (int64, error)
	CountCreatedAfter(start time.Time) (int64, error)
	GetAverageDurationAfter(start time.Time) (float64, error)
	SumSizeBytes() (int64, error)

	// Transaction support
	WithTx(tx *gorm.DB) ExportStore
}

// exportStore implements ExportStore using GORM.
type exportStore struct {
	db *gorm.DB
}

func newExportStore(db *gorm.DB) ExportStore {
	return &exportStore{db: db}
}

// Export CRUD implementations

func (s *exportStore) Create(export *model.Export) error {
	return s.db.Create(export).Error
}

func (s *exportStore) GetByID(id string) (*model.Export, error) {
	var export model.Export
	err := s.db.First(&export, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &export, nil
}

func (s *exportStore) Update(export *model.Export) error {
	return s.db.Model(export).Updates(export).Error
}

func (s *exportStore) Save(export *model.Export) error {
	return s.db.Save(export).Error
}

func (s *exportStore) Delete(id string) error {
	return s.db.Delete(&model.Export{}, "id = ?", id).Error
}

// Export status updates

func (s *exportStore) UpdateStatus(id string, status model.ExportStatus) error {
	return s.db.Model(&model.Export{}).Where("id = ?", id).Update("status", status).Error
}

func (s *exportStore) MarkRunning(id string, startedAt time.Time) error {
	return s.db.Model(&model.Export{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     model.ExportStatusRunning,
		"started_at": startedAt,
	}).Error
}

func (s *exportStore) MarkCompleted(id, filename, outputDir string, sizeBytes int64) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       model.ExportStatusCompleted,
		"filename":     filename,
		"output_dir":   outputDir,
		"size_bytes":   sizeBytes,
		"completed_at": now,
	}
	// Compute duration from StartedAt when available
	var export model.Export
	if err := s.db.Select("started_at").First(&export, "id = ?", id).Error; err == nil && export.StartedAt != nil {
		updates["duration"] = now.Sub(*export.StartedAt).Milliseconds()
	}
	return s.db.Model(&model.Export{}).Where("id = ?", id).Updates(updates).Error
}

func (s *exportStore) MarkFailed(id, errMsg string) error {
	now := time.Now()
	return s.db.Model(&model.Export{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        model.ExportStatusFailed,
		"error_message": errMsg,
		"completed_at":  now,
	}).Error
}

// Export queries

func (s *exportStore) List(statusFilter string, limit, offset int) ([]model.Export, int64, error) {
	var exports []model.Export
	var total int64

	query := s.db.Model(&model.Export{})
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&exports).Error
	return exports, total, err
}

func (s *exportStore) ListByContentType(contentType string, limit, offset int) ([]model.Export, int64, error) {
	var exports []model.Export
	var total int64

	query := s.db.Model(&model.Export{}).Where("content_type = ?", contentType)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&exports).Error
	return exports, total, err
}

func (s *exportStore) ListByStatus(status model.ExportStatus) ([]model.Export, error) {
	var exports []model.Export
	err := s.db.Where("status = ?", status).Find(&exports).Error
	return exports, err
}

func (s *exportStore) ListOlderThan(days int) ([]model.Export, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var exports []model.Export
	err := s.db.Where("created_at < ?", cutoff).Find(&exports).Error
	return exports, err
}

// Retention cleanup

func (s *exportStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	// Unscoped: retention cleanup is a hard delete, not a soft delete
	result := s.db.Unscoped().Where("created_at < ?", cutoff).Delete(&model.Export{})
	return result.RowsAffected, result.Error
}

// Statistics queries

func (s *exportStore) CountAll() (int64, error) {
	var count int64
	err := s.db.Model(&model.Export{}).Count(&count).Error
	return count, err
}

func (s *exportStore) CountByStatus(status model.ExportStatus) (int64, error) {
	var count int64
	err := s.db.Model(&model.Export{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (s *exportStore) CountCreatedAfter(start time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&model.Export{}).Where("created_at >= ?", start).Count(&count).Error
	return count, err
}

func (s *exportStore) GetAverageDurationAfter(start time.Time) (float64, error) {
	var avg *float64
	err := s.db.Model(&model.Export{}).
		Where("status = ? AND completed_at >= ?", model.ExportStatusCompleted, start).
		Select("AVG(duration)").Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (s *exportStore) SumSizeBytes() (int64, error) {
	var sum *int64
	err := s.db.Model(&model.Export{}).
		Where("status = ?", model.ExportStatusCompleted).
		Select("SUM(size_bytes)").Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

// Transaction support

func (s *exportStore) WithTx(tx *gorm.DB) ExportStore {
	return &exportStore{db: tx}
}
