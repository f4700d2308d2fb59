package check

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/qrforge/qrforge/internal/config"
)

// TemplateType represents the type of template file
type TemplateType int

const (
	TemplateBootstrap TemplateType = iota
)

// FileConfig represents a configuration file to check
type FileConfig struct {
	Path        string
	Description string
	Template    TemplateType
}

// FileCheckResult represents the result of a file check
type FileCheckResult struct {
	Path        string
	Exists      bool
	Created     bool
	Description string
	Error       error
}

// checkFiles checks all required configuration files
func (c *Checker) checkFiles() error {
	files := c.RequiredFiles()

	for _, file := range files {
		result := c.checkFile(file)
		c.report.AddFileResult(result)

		if result.Error != nil {
			return result.Error
		}
	}

	return nil
}

// checkFile checks a single file and prompts for creation if missing
func (c *Checker) checkFile(file FileConfig) FileCheckResult {
	result := FileCheckResult{
		Path:        file.Path,
		Description: file.Description,
	}

	// Check if file exists
	if fileExists(file.Path) {
		result.Exists = true
		printFileStatus(file.Path, true, false)
		return result
	}

	// File doesn't exist
	result.Exists = false
	printFileStatus(file.Path, false, false)

	// Ask user if they want to create it
	confirm, err := confirmCreate(file.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		return result
	}

	if !confirm {
		// User declined, just note it
		return result
	}

	// Create parent directory if needed
	if err := ensureDir(file.Path); err != nil {
		result.Error = err
		return result
	}

	// Write the template
	if err := writeTemplate(file.Path, file.Template); err != nil {
		result.Error = err
		return result
	}

	result.Created = true
	printFileCreated(file.Path)

	return result
}

// writeTemplate writes the default content for a template type
func writeTemplate(path string, t TemplateType) error {
	switch t {
	case TemplateBootstrap:
		return config.CreateDefaultBootstrap(path)
	default:
		return fmt.Errorf("unknown template type: %d", t)
	}
}

// printFileStatus prints the status of a file check
func printFileStatus(path string, exists bool, created bool) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if exists {
		green.Printf("  ✓ %s\n", path)
	} else if created {
		green.Printf("  ✓ %s (created)\n", path)
	} else {
		yellow.Printf("  ⚠ %s does not exist\n", path)
	}
}

// printFileCreated prints a message when a file is created
func printFileCreated(path string) {
	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created %s\n", path)
}

// checkOutputDir checks and initializes the export output directory
func (c *Checker) checkOutputDir() error {
	outputDir := c.OutputDir()

	// Check if the directory already exists
	if info, err := os.Stat(outputDir); err == nil && info.IsDir() {
		printFileStatus(outputDir, true, false)
		return nil
	}

	// Directory doesn't exist
	printFileStatus(outputDir, false, false)

	// Ask user if they want to create it
	confirm, err := confirmCreate(outputDir + " (export output)")
	if err != nil {
		return fmt.Errorf("failed to get user confirmation: %w", err)
	}

	if !confirm {
		return nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created %s\n", outputDir)

	return nil
}
