// Package main is the entry point for the QRForge application.
// QRForge generates QR codes and exports them as themed PDF documents.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qrforge/qrforge/consts"
	"github.com/qrforge/qrforge/internal/check"
	"github.com/qrforge/qrforge/internal/config"
	"github.com/qrforge/qrforge/internal/database"
	"github.com/qrforge/qrforge/internal/export"
	"github.com/qrforge/qrforge/internal/imaging"
	"github.com/qrforge/qrforge/internal/qr"
	"github.com/qrforge/qrforge/internal/server"
	"github.com/qrforge/qrforge/internal/store"
	"github.com/qrforge/qrforge/internal/theme"
	"github.com/qrforge/qrforge/pkg/errors"
	"github.com/qrforge/qrforge/pkg/idgen"
	"github.com/qrforge/qrforge/pkg/logger"
	"github.com/qrforge/qrforge/pkg/telemetry"
)

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// bootstrapPath holds the path to the bootstrap configuration file
var bootstrapPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qrforge",
	Short: "QRForge - QR Code Generator and Themed PDF Exporter",
	Long: `QRForge renders text, URLs, WiFi credentials, contact cards and other
payloads as QR codes and exports them as themed PDF documents.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the QRForge server",
	Long: `Start the HTTP server to handle QR preview and document export requests.

On first run, use --check flag to interactively set up your environment:
  qrforge serve --check

This will guide you through:
  - Creating the bootstrap configuration from a template
  - Validating configuration formats

After initial setup, simply run:
  qrforge serve`,
	Run: runServe,
}

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a QR document without starting the server",
	Long: `Generate a themed PDF document for a QR payload directly from the
command line. The payload is parsed to detect its content type (URL, WiFi,
email, vCard, ...) and rendered with the selected theme.

Examples:
  qrforge generate --text "https://example.com" --out ./exports
  qrforge generate --file payload.txt --theme elegant --page-size letter`,
	Run: runGenerate,
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the interactive environment check",
	Run: func(cmd *cobra.Command, args []string) {
		checker := check.NewChecker()
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("QRForge %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&bootstrapPath, "bootstrap", "", "bootstrap config file path (default: config/bootstrap.yaml)")

	// Add commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	// Serve command flags
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
	serveCmd.Flags().Bool("check", false, "run interactive environment check before starting server")

	// Generate command flags
	generateCmd.Flags().String("text", "", "QR payload text")
	generateCmd.Flags().String("file", "", "read QR payload from file")
	generateCmd.Flags().String("out", ".", "output directory for the generated document")
	generateCmd.Flags().String("theme", theme.DefaultName, "document theme ("+strings.Join(theme.Names(), ", ")+")")
	generateCmd.Flags().String("page-size", "", "page size (a4, letter, legal)")
	generateCmd.Flags().String("orientation", "", "page orientation (portrait, landscape)")
	generateCmd.Flags().String("title", "", "document title")
	generateCmd.Flags().String("author", "", "document author metadata")
	generateCmd.Flags().String("subject", "", "document subject metadata")
	generateCmd.Flags().String("password", "", "encrypt the document with a password")
	generateCmd.Flags().Int("qr-size", 0, "QR image size in pixels")
	generateCmd.Flags().String("level", "", "error correction level (low, medium, quartile, highest)")
	generateCmd.Flags().Bool("verify", false, "decode the generated QR image and verify it round-trips")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the QRForge server
func runServe(cmd *cobra.Command, args []string) {
	// Check if interactive check is enabled via --check flag
	interactiveCheck, _ := cmd.Flags().GetBool("check")

	if interactiveCheck {
		// Run full interactive environment check
		checker := check.NewChecker()
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ Environment check completed successfully")
	} else {
		// Run non-interactive basic check
		checker := check.NewChecker()
		result := checker.RunNonInteractive()

		if !result.Success {
			// Print errors and exit
			check.PrintCheckResult(result)
			os.Exit(1)
		}

		// Print warnings if any (but don't block startup)
		if len(result.Warnings) > 0 {
			for _, warn := range result.Warnings {
				fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
			}
			fmt.Fprintln(os.Stderr)
		}
	}

	// Record server start time
	consts.SetStartedAt(time.Now())

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	// Auto-generate JWT secret if empty and save to config file
	if cfg.Admin != nil && cfg.Admin.Enabled && strings.TrimSpace(cfg.Admin.JWTSecret) == "" {
		newSecret := idgen.NewSecureSecret(32)
		cfg.Admin.JWTSecret = newSecret

		// Save to config file
		if err := config.UpdateJWTSecretInConfig(bootstrapPath, newSecret); err != nil {
			fmt.Fprintf(os.Stderr, "[WARNING] Failed to save JWT secret to config file: %v\n", err)
			fmt.Fprintf(os.Stderr, "Using auto-generated JWT secret for this session only.\n")
			fmt.Fprintf(os.Stderr, "Please manually add jwt_secret to your config file to persist across restarts.\n\n")
		} else {
			fmt.Fprintf(os.Stderr, "[INFO] JWT secret was empty, auto-generated and saved to config file.\n\n")
		}
	}

	// Validate admin configuration
	// Note: password_hash is NOT validated - can be set via the setup endpoint
	if validationErr := config.ValidateAdminConfig(cfg.Admin); validationErr != nil {
		fmt.Fprintf(os.Stderr, "\n[ERROR] Admin configuration validation failed\n")
		fmt.Fprintf(os.Stderr, "Error Code: %s\n", validationErr.Code)
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", validationErr)

		// Print context-specific configuration hints based on error type
		switch validationErr.Code {
		case errors.ErrCodeJWTSecretInvalid:
			fmt.Fprintf(os.Stderr, "JWT secret is invalid or too short.\n")
			fmt.Fprintf(os.Stderr, "Please configure JWT secret in your config file:\n")
			fmt.Fprintf(os.Stderr, "  admin:\n")
			fmt.Fprintf(os.Stderr, "    jwt_secret: \"%s\"\n\n", idgen.NewSecureSecret(32))
		case errors.ErrCodeAdminCredentialsEmpty:
			fmt.Fprintf(os.Stderr, "Please configure admin username in your config file:\n")
			fmt.Fprintf(os.Stderr, "  admin:\n")
			fmt.Fprintf(os.Stderr, "    username: \"admin\"\n\n")
		default:
			fmt.Fprintf(os.Stderr, "Please check admin configuration in your config file.\n\n")
		}

		os.Exit(errors.ExitCodeConfigValidation)
	}

	// Validate export defaults (page size, orientation, retention)
	if validationErr := config.ValidateExportConfig(&cfg.Export); validationErr != nil {
		fmt.Fprintf(os.Stderr, "\n[ERROR] Export configuration validation failed\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", validationErr)
		os.Exit(errors.ExitCodeConfigValidation)
	}

	// Log warning if password is not set, but allow server to start
	if cfg.Admin != nil && cfg.Admin.Enabled && strings.TrimSpace(cfg.Admin.PasswordHash) == "" {
		fmt.Fprintf(os.Stderr, "[WARNING] Admin password not set\n")
		fmt.Fprintf(os.Stderr, "Please complete the first-run setup at http://%s after starting the server.\n\n", cfg.Server.Address())
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting QRForge",
		zap.String("version", Version),
	)

	// Initialize telemetry (OpenTelemetry traces and metrics)
	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	// Initialize database
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = database.DefaultDBPath
	}
	if err := database.InitWithPath(dbPath); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Create store instance for dependency injection
	dataStore := store.NewStore(database.Get())

	// Start export retention cleanup service
	cleanupService := store.NewExportCleanupService(dataStore.Export(), cfg.Export.RetentionDays, cfg.Export.CleanupSchedule)
	if err := cleanupService.Start(); err != nil {
		logger.Warn("Failed to start export cleanup service", zap.Error(err))
		// Continue without cleanup - not fatal
	} else {
		defer cleanupService.Stop()
	}

	// Create and configure server
	srv := server.NewWithConfigPath(cfg, bootstrapPath, dataStore)
	srv.SetupRoutes()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("QRForge server is running",
		zap.String("address", cfg.Server.Address()),
	)

	// Log access URLs for user convenience
	port := cfg.Server.Port
	logger.Info(fmt.Sprintf("  Local:   http://localhost:%d", port))
	if lanIP := getLocalIP(); lanIP != "" {
		logger.Info(fmt.Sprintf("  Network: http://%s:%d", lanIP, port))
	}

	// Wait for shutdown
	srv.WaitForShutdown()

	logger.Info("QRForge stopped")
}

// runGenerate renders a single QR document from the command line
func runGenerate(cmd *cobra.Command, args []string) {
	text, _ := cmd.Flags().GetString("text")
	file, _ := cmd.Flags().GetString("file")

	if text == "" && file == "" {
		fmt.Fprintln(os.Stderr, "Either --text or --file is required")
		os.Exit(1)
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read payload file: %v\n", err)
			os.Exit(1)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}

	// The document pipeline logs through the shared logger
	if err := logger.Init(logger.Config{Level: "warn", Format: "text"}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	size, _ := cmd.Flags().GetInt("qr-size")
	levelStr, _ := cmd.Flags().GetString("level")
	verify, _ := cmd.Flags().GetBool("verify")

	level := qr.ParseLevel(levelStr)
	png, encErr := qr.Encode(text, qr.ClampSize(size), level)
	if encErr != nil {
		fmt.Fprintf(os.Stderr, "QR encoding failed: %v\n", encErr)
		os.Exit(1)
	}

	if verify {
		// Verification failure is reported but does not block the export.
		if verifyErr := qr.Verify(png, text); verifyErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: QR verification failed: %v\n", verifyErr)
		} else {
			fmt.Println("QR verification passed")
		}
	}

	outDir, _ := cmd.Flags().GetString("out")
	themeName, _ := cmd.Flags().GetString("theme")
	pageSize, _ := cmd.Flags().GetString("page-size")
	orientation, _ := cmd.Flags().GetString("orientation")
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	subject, _ := cmd.Flags().GetString("subject")
	password, _ := cmd.Flags().GetString("password")

	assembler := export.NewAssembler(nil, nil, &export.DirSink{Dir: outDir})
	result := assembler.Generate(cmd.Context(), imaging.EncodeDataURI("png", png), text, export.Options{
		Title:       title,
		Author:      author,
		Subject:     subject,
		Password:    password,
		PageSize:    pageSize,
		Orientation: orientation,
		Theme:       themeName,
	})

	if !result.Success {
		fmt.Fprintf(os.Stderr, "Document generation failed: %s\n", result.Error)
		os.Exit(1)
	}

	fmt.Printf("Created %s (%d bytes, %s)\n", result.Filename, result.Size, result.ContentType)
}

// loadConfig loads the bootstrap configuration
func loadConfig() (*config.BootstrapConfig, error) {
	// Use default bootstrap path if not specified
	if bootstrapPath == "" {
		bootstrapPath = config.BootstrapConfigPath
	}

	// Check if bootstrap.yaml exists
	if !config.BootstrapExists(bootstrapPath) {
		return nil, fmt.Errorf("bootstrap configuration not found: %s\nRun 'qrforge check' to create it", bootstrapPath)
	}

	// Load bootstrap configuration
	cfg, err := config.LoadBootstrap(bootstrapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load bootstrap config: %w", err)
	}

	return cfg, nil
}

// getLocalIP returns the first non-loopback IPv4 address
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
