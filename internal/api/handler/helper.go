// Package handler provides HTTP handlers for the API.
package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

// Pagination configuration
const (
	defaultPage     = 1
	defaultPageSize = 20
	minPageSize     = 1 // Allow small page sizes for dashboard widgets
	maxPageSize     = 100
)

// parsePagination extracts page/page_size query parameters with bounds applied
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = defaultPage
	}
	if pageSize < minPageSize {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// validateFilename validates a filename to prevent path traversal attacks
// Returns true if the filename is safe, false otherwise
func validateFilename(name string) bool {
	// Check for empty name
	if name == "" {
		return false
	}

	// Check for path traversal patterns
	if strings.Contains(name, "..") {
		return false
	}

	// Check for directory separators (both Unix and Windows)
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return false
	}

	// Check for null bytes (can be used to bypass checks)
	if strings.Contains(name, "\x00") {
		return false
	}

	// Clean the filename and ensure it doesn't change after cleaning
	cleaned := filepath.Clean(name)
	if cleaned != name || cleaned == "." || cleaned == ".." {
		return false
	}

	return true
}

// safeJoinPath safely joins a base directory with a filename and validates
// that the result is within the base directory
func safeJoinPath(baseDir, name string) (string, bool) {
	if !validateFilename(name) {
		return "", false
	}

	// Get absolute path of base directory
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", false
	}

	// Join and clean the path
	fullPath := filepath.Join(absBase, name)
	cleanPath := filepath.Clean(fullPath)

	// Verify the result is still within the base directory
	if !strings.HasPrefix(cleanPath, absBase+string(filepath.Separator)) && cleanPath != absBase {
		return "", false
	}

	return cleanPath, true
}

// updatePasswordHashInConfig updates the password_hash field in the config file.
// It uses YAML parsing to safely update only the password_hash field while
// preserving all other fields.
func updatePasswordHashInConfig(configPath, passwordHash string) error {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg map[string]interface{}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	adminSection, ok := cfg["admin"].(map[string]interface{})
	if !ok {
		adminSection = make(map[string]interface{})
		cfg["admin"] = adminSection
	}

	adminSection["password_hash"] = passwordHash

	newContent, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, newContent, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
