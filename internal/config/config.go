// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Default configuration values
const (
	defaultOutputDir       = "./exports"
	defaultMaxConcurrent   = 4
	defaultRetentionDays   = 30
	defaultCleanupSchedule = "0 3 * * *"
	defaultQRSize          = 512
	defaultTheme           = "modern"
	defaultPageSize        = "a4"
	defaultOrientation     = "portrait"
	defaultOTLPEndpoint    = "localhost:4317"
	defaultPrometheusPort  = 9090
)

// AdminConfig holds admin console configuration
type AdminConfig struct {
	Enabled         bool   `yaml:"enabled"`       // Enable admin console
	Username        string `yaml:"username"`      // Admin username
	PasswordHash    string `yaml:"password_hash"` // Admin password (bcrypt hash)
	JWTSecret       string `yaml:"jwt_secret"`    // JWT signing secret
	TokenExpiration int    `yaml:"expiry_hours"`  // Token expiration in hours
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ExportConfig holds document export configuration
type ExportConfig struct {
	OutputDir       string `yaml:"output_dir"`       // Directory for generated documents
	MaxConcurrent   int    `yaml:"max_concurrent"`   // Maximum concurrent export jobs
	RetentionDays   int    `yaml:"retention_days"`   // Export record retention days
	CleanupSchedule string `yaml:"cleanup_schedule"` // Cron expression for retention cleanup
	DefaultTheme    string `yaml:"default_theme"`    // Default document theme
	PageSize        string `yaml:"page_size"`        // Default page size (a4, letter, legal)
	Orientation     string `yaml:"orientation"`      // Default page orientation (portrait, landscape)
}

// QRConfig holds QR code generation configuration
type QRConfig struct {
	DefaultSize int  `yaml:"default_size"` // Default QR image size in pixels
	Verify      bool `yaml:"verify"`       // Decode generated codes to verify round-trip
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid conflicts with special characters like bcrypt hashes
func expandEnvVars(content string) string {
	// Match ${VAR_NAME} patterns only (not $VAR_NAME to avoid bcrypt hash conflicts)
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		// Return default value if provided
		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// parseBool parses a boolean string value
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
