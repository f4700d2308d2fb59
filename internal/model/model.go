// Package model defines the data models for the application.
// All models use GORM for ORM operations with SQLite database.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StringArray is a custom type for storing string arrays in SQLite
type StringArray []string

// Value implements driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, s)
}

// JSONMap is a custom type for storing JSON maps in SQLite
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	data, err := json.Marshal(j)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, j)
}

// ExportStatus represents the status of an export job
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// Export represents a PDF export job and its outcome
type Export struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Source material
	RawText     string `gorm:"type:text;not null" json:"raw_text"`  // text encoded in the QR code
	ContentType string `gorm:"size:50;index" json:"content_type"`   // detected content type (url, wifi, ...)
	Source      string `gorm:"size:50;not null;default:api" json:"source"` // "api" or "cli"

	// Document options
	Title       string      `gorm:"size:255" json:"title,omitempty"`
	Theme       string      `gorm:"size:50;not null;default:modern" json:"theme"`
	PageSize    string      `gorm:"size:20;not null;default:a4" json:"page_size"`
	Orientation string      `gorm:"size:20;not null;default:portrait" json:"orientation"`
	QRSize      int         `gorm:"default:512" json:"qr_size"`
	Protected   bool        `gorm:"default:false" json:"protected"` // password-protected output
	Keywords    StringArray `gorm:"type:text" json:"keywords,omitempty"`
	Verified    *bool       `json:"verified,omitempty"` // QR round-trip check outcome; nil when not requested

	// Status and result
	Status    ExportStatus `gorm:"size:50;not null;default:pending;index" json:"status"`
	Filename  string       `gorm:"size:512" json:"filename,omitempty"`
	OutputDir string       `gorm:"size:1024" json:"-"` // directory the file was written to
	SizeBytes int64        `gorm:"default:0" json:"size_bytes"`

	// Timing
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Duration    int64      `json:"duration,omitempty"` // milliseconds

	// Error handling
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`
}

// AllModels returns all models for auto-migration
func AllModels() []interface{} {
	models := []interface{}{
		&Export{},
	}
	// Add settings models
	models = append(models, SettingsAllModels()...)
	return models
}
