package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qrforge/qrforge/internal/config"
)

// testChecker returns a checker rooted in a temp config dir
func testChecker(t *testing.T) *Checker {
	t.Helper()
	checker := NewChecker()
	checker.configDir = t.TempDir()
	return checker
}

// writeTestBootstrap writes a bootstrap config built from the default plus a mutation
func writeTestBootstrap(t *testing.T, checker *Checker, mutate func(*config.BootstrapConfig)) {
	t.Helper()
	cfg := config.DefaultBootstrapConfig()
	if mutate != nil {
		mutate(cfg)
	}
	if err := config.WriteBootstrap(checker.BootstrapPath(), cfg); err != nil {
		t.Fatalf("Failed to write bootstrap config: %v", err)
	}
}

// TestValidateBootstrapYaml tests validateBootstrapYaml
func TestValidateBootstrapYaml(t *testing.T) {
	tests := []struct {
		name        string
		setupFile   bool
		fileContent string
		expectValid bool
		expectError bool
	}{
		{
			name:        "Valid bootstrap file",
			setupFile:   true,
			fileContent: "server:\n  host: localhost\n  port: 8080",
			expectValid: true,
			expectError: false,
		},
		{
			name:        "Non-existent file",
			setupFile:   false,
			expectValid: false,
			expectError: true,
		},
		{
			name:        "Invalid YAML",
			setupFile:   true,
			fileContent: "invalid: yaml: content: [",
			expectValid: false,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := testChecker(t)
			bootstrapPath := checker.BootstrapPath()
			if tt.setupFile {
				if err := os.WriteFile(bootstrapPath, []byte(tt.fileContent), 0644); err != nil {
					t.Fatalf("Failed to create bootstrap file: %v", err)
				}
			}

			result := checker.validateBootstrapYaml()

			if result.Valid != tt.expectValid {
				t.Errorf("validateBootstrapYaml() Valid = %v, want %v", result.Valid, tt.expectValid)
			}
			if (result.Error != nil) != tt.expectError {
				t.Errorf("validateBootstrapYaml() Error = %v, want error = %v", result.Error, tt.expectError)
			}
			if result.Path != bootstrapPath {
				t.Errorf("validateBootstrapYaml() Path = %s, want %s", result.Path, bootstrapPath)
			}
		})
	}
}

// TestValidateExportSettings tests validateExportSettings
func TestValidateExportSettings(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*config.BootstrapConfig)
		expectValid bool
	}{
		{
			name:        "Default config",
			mutate:      nil,
			expectValid: true,
		},
		{
			name: "Unknown theme",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Export.DefaultTheme = "neon"
			},
			expectValid: false,
		},
		{
			name: "Invalid page size",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Export.PageSize = "a5"
			},
			expectValid: false,
		},
		{
			name: "Invalid cleanup schedule",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Export.CleanupSchedule = "not a cron expr"
			},
			expectValid: false,
		},
		{
			name: "Valid letter landscape",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Export.PageSize = "letter"
				cfg.Export.Orientation = "landscape"
			},
			expectValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := testChecker(t)
			writeTestBootstrap(t, checker, tt.mutate)

			result := checker.validateExportSettings()

			if result.Valid != tt.expectValid {
				t.Errorf("validateExportSettings() Valid = %v, want %v (error: %v)",
					result.Valid, tt.expectValid, result.Error)
			}
		})
	}
}

// TestValidateExportSettings_RetentionWarning tests the zero retention warning
func TestValidateExportSettings_RetentionWarning(t *testing.T) {
	checker := testChecker(t)
	writeTestBootstrap(t, checker, func(cfg *config.BootstrapConfig) {
		cfg.Export.RetentionDays = 0
	})

	result := checker.validateExportSettings()

	if !result.Valid {
		t.Fatalf("validateExportSettings() should be valid, error: %v", result.Error)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a warning for retention_days = 0")
	}
}

// TestValidateAdminSettings tests validateAdminSettings
func TestValidateAdminSettings(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*config.BootstrapConfig)
		expectValid bool
		wantDetail  string
	}{
		{
			name: "Admin disabled",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Admin.Enabled = false
			},
			expectValid: true,
			wantDetail:  "disabled",
		},
		{
			name: "Empty username",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Admin.Enabled = true
				cfg.Admin.Username = ""
			},
			expectValid: false,
		},
		{
			name: "Short jwt secret",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Admin.Enabled = true
				cfg.Admin.Username = "admin"
				cfg.Admin.JWTSecret = "too-short"
			},
			expectValid: false,
		},
		{
			name: "Empty jwt secret allowed",
			mutate: func(cfg *config.BootstrapConfig) {
				cfg.Admin.Enabled = true
				cfg.Admin.Username = "admin"
				cfg.Admin.JWTSecret = ""
			},
			expectValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := testChecker(t)
			writeTestBootstrap(t, checker, tt.mutate)

			result := checker.validateAdminSettings()

			if result.Valid != tt.expectValid {
				t.Errorf("validateAdminSettings() Valid = %v, want %v (error: %v)",
					result.Valid, tt.expectValid, result.Error)
			}
			if tt.wantDetail != "" && result.Detail != tt.wantDetail {
				t.Errorf("validateAdminSettings() Detail = %q, want %q", result.Detail, tt.wantDetail)
			}
		})
	}
}

// TestValidateYamlSyntax tests validateYamlSyntax
func TestValidateYamlSyntax(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name        string
		fileContent string
		expectError bool
	}{
		{
			name:        "Valid YAML",
			fileContent: "key: value\nlist:\n  - item1\n  - item2",
			expectError: false,
		},
		{
			name:        "Invalid YAML",
			fileContent: "key: value: invalid",
			expectError: true,
		},
		{
			name:        "Empty file",
			fileContent: "",
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(tmpDir, "test.yaml")
			if err := os.WriteFile(tmpFile, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			defer os.Remove(tmpFile)

			err := validateYamlSyntax(tmpFile)
			if (err != nil) != tt.expectError {
				t.Errorf("validateYamlSyntax() error = %v, want error = %v", err, tt.expectError)
			}
		})
	}
}

// TestValidationResult tests ValidationResult struct
func TestValidationResult(t *testing.T) {
	result := ValidationResult{
		Path:     "test.yaml",
		Valid:    true,
		Detail:   "theme: modern",
		Error:    nil,
		Warnings: []string{"warning1", "warning2"},
	}

	if result.Path != "test.yaml" {
		t.Errorf("ValidationResult.Path = %s, want test.yaml", result.Path)
	}
	if !result.Valid {
		t.Error("ValidationResult.Valid should be true")
	}
	if result.Detail != "theme: modern" {
		t.Errorf("ValidationResult.Detail = %s, want 'theme: modern'", result.Detail)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("ValidationResult.Warnings length = %d, want 2", len(result.Warnings))
	}
}
