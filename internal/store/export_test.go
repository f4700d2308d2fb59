package store

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qrforge/qrforge/internal/model"
)

// TestExportStore_Create tests creating an export
func TestExportStore_Create(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	export := CreateTestExport(t, store)

	retrieved, err := store.Export().GetByID(export.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.RawText != "https://example.com" {
		t.Errorf("Expected RawText 'https://example.com', got '%s'", retrieved.RawText)
	}
	if retrieved.Status != model.ExportStatusPending {
		t.Errorf("Expected status pending, got '%s'", retrieved.Status)
	}
}

// TestExportStore_GetByID_NotFound tests retrieving a non-existent export
func TestExportStore_GetByID_NotFound(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	_, err := store.Export().GetByID("does-not-exist")
	if err != gorm.ErrRecordNotFound {
		t.Errorf("Expected gorm.ErrRecordNotFound, got %v", err)
	}
}

// TestExportStore_StatusTransitions tests the status update helpers
func TestExportStore_StatusTransitions(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	export := CreateTestExport(t, store)

	if err := store.Export().MarkRunning(export.ID, time.Now()); err != nil {
		t.Fatalf("MarkRunning() failed: %v", err)
	}
	retrieved, _ := store.Export().GetByID(export.ID)
	if retrieved.Status != model.ExportStatusRunning {
		t.Errorf("Expected status running, got '%s'", retrieved.Status)
	}
	if retrieved.StartedAt == nil {
		t.Error("StartedAt should be set after MarkRunning")
	}

	if err := store.Export().MarkCompleted(export.ID, "url-test-2025.pdf", "/tmp/exports", 12345); err != nil {
		t.Fatalf("MarkCompleted() failed: %v", err)
	}
	retrieved, _ = store.Export().GetByID(export.ID)
	if retrieved.Status != model.ExportStatusCompleted {
		t.Errorf("Expected status completed, got '%s'", retrieved.Status)
	}
	if retrieved.Filename != "url-test-2025.pdf" {
		t.Errorf("Expected filename to be set, got '%s'", retrieved.Filename)
	}
	if retrieved.SizeBytes != 12345 {
		t.Errorf("Expected SizeBytes 12345, got %d", retrieved.SizeBytes)
	}
	if retrieved.CompletedAt == nil {
		t.Error("CompletedAt should be set after MarkCompleted")
	}
}

// TestExportStore_MarkFailed tests recording a failure
func TestExportStore_MarkFailed(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	export := CreateTestExport(t, store)

	if err := store.Export().MarkFailed(export.ID, "invalid theme"); err != nil {
		t.Fatalf("MarkFailed() failed: %v", err)
	}

	retrieved, _ := store.Export().GetByID(export.ID)
	if retrieved.Status != model.ExportStatusFailed {
		t.Errorf("Expected status failed, got '%s'", retrieved.Status)
	}
	if retrieved.ErrorMessage != "invalid theme" {
		t.Errorf("Expected error message to be stored, got '%s'", retrieved.ErrorMessage)
	}
}

// TestExportStore_List tests listing with status filter and pagination
func TestExportStore_List(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		CreateTestExport(t, store)
	}
	failed := CreateTestExport(t, store)
	store.Export().MarkFailed(failed.ID, "boom")

	// All records
	exports, total, err := store.Export().List("", 10, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected total 4, got %d", total)
	}
	if len(exports) != 4 {
		t.Errorf("Expected 4 exports, got %d", len(exports))
	}

	// Filtered by status
	exports, total, err = store.Export().List(string(model.ExportStatusFailed), 10, 0)
	if err != nil {
		t.Fatalf("List() with filter failed: %v", err)
	}
	if total != 1 || len(exports) != 1 {
		t.Errorf("Expected 1 failed export, got total=%d len=%d", total, len(exports))
	}

	// Pagination
	exports, total, err = store.Export().List("", 2, 0)
	if err != nil {
		t.Fatalf("List() with limit failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected total 4 with pagination, got %d", total)
	}
	if len(exports) != 2 {
		t.Errorf("Expected 2 exports with limit, got %d", len(exports))
	}
}

// TestExportStore_ListByContentType tests filtering by content type
func TestExportStore_ListByContentType(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	CreateTestExport(t, store)
	CreateTestExport(t, store, func(e *model.Export) {
		e.RawText = "WIFI:T:WPA;S:Net;P:pw;;"
		e.ContentType = "wifi"
	})

	exports, total, err := store.Export().ListByContentType("wifi", 10, 0)
	if err != nil {
		t.Fatalf("ListByContentType() failed: %v", err)
	}
	if total != 1 || len(exports) != 1 {
		t.Fatalf("Expected 1 wifi export, got total=%d len=%d", total, len(exports))
	}
	if exports[0].ContentType != "wifi" {
		t.Errorf("Expected content type wifi, got '%s'", exports[0].ContentType)
	}
}

// TestExportStore_DeleteOlderThan tests retention cleanup
func TestExportStore_DeleteOlderThan(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	old := CreateTestExport(t, store)
	BackdateExport(t, store, old.ID, 40*24*time.Hour)
	recent := CreateTestExport(t, store)

	// The old record shows up in ListOlderThan
	expired, err := store.Export().ListOlderThan(30)
	if err != nil {
		t.Fatalf("ListOlderThan() failed: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != old.ID {
		t.Fatalf("Expected only the old export to be expired, got %d records", len(expired))
	}

	deleted, err := store.Export().DeleteOlderThan(30)
	if err != nil {
		t.Fatalf("DeleteOlderThan() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted record, got %d", deleted)
	}

	// Old export is gone even with Unscoped
	var count int64
	store.DB().Unscoped().Model(&model.Export{}).Where("id = ?", old.ID).Count(&count)
	if count != 0 {
		t.Error("Old export should be hard deleted")
	}

	// Recent export survives
	if _, err := store.Export().GetByID(recent.ID); err != nil {
		t.Errorf("Recent export should survive cleanup: %v", err)
	}
}

// TestExportStore_Statistics tests the statistics helpers
func TestExportStore_Statistics(t *testing.T) {
	store, cleanup := SetupTestDB(t)
	defer cleanup()

	e1 := CreateTestExport(t, store)
	e2 := CreateTestExport(t, store)
	CreateTestExport(t, store)

	store.Export().MarkRunning(e1.ID, time.Now())
	store.Export().MarkCompleted(e1.ID, "a.pdf", "/tmp", 1000)
	store.Export().MarkFailed(e2.ID, "err")

	total, err := store.Export().CountAll()
	if err != nil || total != 3 {
		t.Errorf("CountAll() = %d, %v; want 3, nil", total, err)
	}

	completed, err := store.Export().CountByStatus(model.ExportStatusCompleted)
	if err != nil || completed != 1 {
		t.Errorf("CountByStatus(completed) = %d, %v; want 1, nil", completed, err)
	}

	recent, err := store.Export().CountCreatedAfter(time.Now().Add(-time.Hour))
	if err != nil || recent != 3 {
		t.Errorf("CountCreatedAfter() = %d, %v; want 3, nil", recent, err)
	}

	sum, err := store.Export().SumSizeBytes()
	if err != nil || sum != 1000 {
		t.Errorf("SumSizeBytes() = %d, %v; want 1000, nil", sum, err)
	}
}

// TestExportStore_Transaction tests rollback via the Store transaction wrapper
func TestExportStore_Transaction(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	err := st.Transaction(func(tx Store) error {
		CreateTestExport(t, tx)
		return gorm.ErrInvalidTransaction
	})
	if err == nil {
		t.Fatal("Transaction should propagate the error")
	}

	total, _ := st.Export().CountAll()
	if total != 0 {
		t.Errorf("Expected rollback, found %d records", total)
	}
}
