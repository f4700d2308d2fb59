package check

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/qrforge/qrforge/internal/config"
	"github.com/qrforge/qrforge/internal/theme"
)

// ValidationResult represents the result of a config validation
type ValidationResult struct {
	Path     string
	Valid    bool
	Detail   string // extra info shown next to the path
	Error    error
	Warnings []string
}

// validateConfigs validates all configuration files and settings
func (c *Checker) validateConfigs() error {
	// Validate bootstrap.yaml format
	bootstrapResult := c.validateBootstrapYaml()
	c.report.AddValidationResult(bootstrapResult)
	printValidationResult(bootstrapResult)

	if !bootstrapResult.Valid {
		return fmt.Errorf("bootstrap.yaml validation failed: %w", bootstrapResult.Error)
	}

	// Validate export defaults (theme, page size, cleanup schedule)
	exportResult := c.validateExportSettings()
	c.report.AddValidationResult(exportResult)
	printValidationResult(exportResult)

	if !exportResult.Valid {
		return fmt.Errorf("export settings validation failed: %w", exportResult.Error)
	}

	// Validate admin settings
	adminResult := c.validateAdminSettings()
	c.report.AddValidationResult(adminResult)
	printValidationResult(adminResult)

	if !adminResult.Valid {
		return fmt.Errorf("admin settings validation failed: %w", adminResult.Error)
	}

	return nil
}

// validateBootstrapYaml validates the bootstrap configuration file
func (c *Checker) validateBootstrapYaml() ValidationResult {
	path := c.BootstrapPath()
	result := ValidationResult{Path: path}

	// Check if file exists
	if !fileExists(path) {
		result.Valid = false
		result.Error = fmt.Errorf("file does not exist")
		return result
	}

	// Try to load the bootstrap config
	_, err := config.LoadBootstrap(path)
	if err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("format error: %v", err)
		return result
	}

	result.Valid = true
	return result
}

// validateExportSettings validates the export section of the bootstrap config
func (c *Checker) validateExportSettings() ValidationResult {
	result := ValidationResult{Path: c.BootstrapPath() + " (export)"}

	cfg, err := config.LoadBootstrap(c.BootstrapPath())
	if err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("format error: %v", err)
		return result
	}

	// Page size, orientation, retention and concurrency bounds
	if appErr := config.ValidateExportConfig(&cfg.Export); appErr != nil {
		result.Valid = false
		result.Error = appErr
		return result
	}

	// Default theme must be one of the registered document themes
	if cfg.Export.DefaultTheme != "" {
		if _, ok := theme.Lookup(cfg.Export.DefaultTheme); !ok {
			result.Valid = false
			result.Error = fmt.Errorf("unknown default_theme %q: must be one of %s",
				cfg.Export.DefaultTheme, strings.Join(theme.Names(), ", "))
			return result
		}
		result.Detail = fmt.Sprintf("theme: %s", cfg.Export.DefaultTheme)
	}

	// Cleanup schedule must be a valid cron expression
	if cfg.Export.CleanupSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Export.CleanupSchedule); err != nil {
			result.Valid = false
			result.Error = fmt.Errorf("invalid cleanup_schedule %q: %v", cfg.Export.CleanupSchedule, err)
			return result
		}
	}

	// Retention disabled is worth pointing out, exports will accumulate
	if cfg.Export.RetentionDays == 0 {
		result.Warnings = append(result.Warnings,
			"retention_days is 0, exported documents are kept forever")
	}

	result.Valid = true
	return result
}

// validateAdminSettings validates the admin section of the bootstrap config.
// An empty jwt_secret is allowed here because the server generates one on startup.
func (c *Checker) validateAdminSettings() ValidationResult {
	result := ValidationResult{Path: c.BootstrapPath() + " (admin)"}

	cfg, err := config.LoadBootstrap(c.BootstrapPath())
	if err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("format error: %v", err)
		return result
	}

	if cfg.Admin == nil || !cfg.Admin.Enabled {
		result.Valid = true
		result.Detail = "disabled"
		return result
	}

	if strings.TrimSpace(cfg.Admin.Username) == "" {
		result.Valid = false
		result.Error = fmt.Errorf("admin username cannot be empty when admin access is enabled")
		return result
	}

	// Only check length when a secret is actually set
	if cfg.Admin.JWTSecret != "" && len(cfg.Admin.JWTSecret) < config.MinJWTSecretLength {
		result.Valid = false
		result.Error = fmt.Errorf("jwt_secret must be at least %d characters long", config.MinJWTSecretLength)
		return result
	}

	if cfg.Admin.JWTSecret == "" {
		result.Warnings = append(result.Warnings,
			"jwt_secret is empty, a secure secret will be generated on first startup")
	}

	if cfg.Admin.PasswordHash == "" {
		result.Warnings = append(result.Warnings,
			"password_hash not set, complete the first-run setup after the server starts")
	} else if !config.IsValidBcryptHash(cfg.Admin.PasswordHash) {
		result.Warnings = append(result.Warnings,
			"password_hash is not a valid bcrypt hash")
	}

	result.Valid = true
	return result
}

// validateYamlSyntax validates YAML syntax
func validateYamlSyntax(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}

	var content interface{}
	if err := yaml.Unmarshal(data, &content); err != nil {
		return fmt.Errorf("YAML syntax error: %w", err)
	}

	return nil
}

// printValidationResult prints the validation result
func printValidationResult(result ValidationResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if result.Valid {
		if result.Detail != "" {
			green.Printf("  ✓ %s (%s)\n", result.Path, result.Detail)
		} else {
			green.Printf("  ✓ %s\n", result.Path)
		}
	} else if result.Error != nil {
		red.Printf("  ✗ %s: %v\n", result.Path, result.Error)
	} else {
		yellow.Printf("  ⚠ %s\n", result.Path)
	}

	// Print warnings if any
	for _, warning := range result.Warnings {
		yellow.Printf("    └─ %s\n", warning)
	}
}
