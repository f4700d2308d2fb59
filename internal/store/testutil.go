// Package store provides test utilities for database testing.
package store

import (
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qrforge/qrforge/internal/database"
	"github.com/qrforge/qrforge/internal/model"
	"github.com/qrforge/qrforge/pkg/idgen"
)

// SetupTestDB creates a temporary SQLite database for testing.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	// Reset database state to allow re-initialization
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database with temp path
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()
	store := NewStore(db)

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return store, cleanup
}

// SetupTestDBWithModels creates a temporary SQLite database and runs migrations.
// This is a convenience function that ensures all models are migrated.
func SetupTestDBWithModels(t *testing.T) (*gorm.DB, func()) {
	database.ResetForTesting()

	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()

	models := model.AllModels()
	if err := db.AutoMigrate(models...); err != nil {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
		t.Fatalf("Failed to migrate models: %v", err)
	}

	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return db, cleanup
}

// CreateTestExport creates a test Export with default values.
// Fields can be overridden by passing a function that modifies the export.
func CreateTestExport(t *testing.T, store Store, overrides ...func(*model.Export)) *model.Export {
	export := &model.Export{
		ID:          idgen.NewExportID(),
		RawText:     "https://example.com",
		ContentType: "url",
		Source:      "api",
		Theme:       "modern",
		PageSize:    "a4",
		Orientation: "portrait",
		Status:      model.ExportStatusPending,
	}

	// Apply overrides
	for _, override := range overrides {
		override(export)
	}

	if err := store.Export().Create(export); err != nil {
		t.Fatalf("Failed to create test export: %v", err)
	}

	return export
}

// BackdateExport rewrites an export's created_at to simulate an old record.
func BackdateExport(t *testing.T, store Store, id string, age time.Duration) {
	past := time.Now().Add(-age)
	if err := store.DB().Model(&model.Export{}).Where("id = ?", id).
		Update("created_at", past).Error; err != nil {
		t.Fatalf("Failed to backdate export: %v", err)
	}
}
