// Package store provides data access layer interfaces and implementations.
// This package abstracts database operations to improve maintainability
// and decouple business logic from specific database implementations.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
// It provides a single point of access for all database operations.
type Store interface {
	Export() ExportStore
	Settings() SettingsStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db            *gorm.DB
	exportStore   ExportStore
	settingsStore SettingsStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:            db,
		exportStore:   newExportStore(db),
		settingsStore: newSettingsStore(db),
	}
}

func (s *gormStore) Export() ExportStore {
	return s.exportStore
}

func (s *gormStore) Settings() SettingsStore {
	return s.settingsStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txStore := &gormStore{
			db:            tx,
			exportStore:   newExportStore(tx),
			settingsStore: newSettingsStore(tx),
		}
		return fn(txStore)
	})
}
