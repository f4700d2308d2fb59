package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/qrforge/qrforge/internal/config"
)

// TestAuthHandler_Login_AdminDisabled tests login when admin is disabled
func TestAuthHandler_Login_AdminDisabled(t *testing.T) {
	router := SetupTestRouter()
	cfg := &config.BootstrapConfig{
		Admin: &config.AdminConfig{
			Enabled: false,
		},
	}

	handler := NewAuthHandler(cfg)
	router.POST("/api/v1/auth/login", handler.Login)

	reqBody := map[string]interface{}{
		"username": "admin",
		"password": "password",
	}
	req := CreateTestRequest("POST", "/api/v1/auth/login", reqBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized)
}

// TestAuthHandler_Login_InvalidRequest tests login with missing fields
func TestAuthHandler_Login_InvalidRequest(t *testing.T) {
	router := SetupTestRouter()
	cfg := &config.BootstrapConfig{
		Admin: &config.AdminConfig{
			Enabled: true,
		},
	}

	handler := NewAuthHandler(cfg)
	router.POST("/api/v1/auth/login", handler.Login)

	// Empty body
	req := CreateTestRequest("POST", "/api/v1/auth/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusBadRequest)

	// Missing username
	req = CreateTestRequest("POST", "/api/v1/auth/login", map[string]interface{}{"password": "password"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusBadRequest)

	// Missing password
	req = CreateTestRequest("POST", "/api/v1/auth/login", map[string]interface{}{"username": "admin"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusBadRequest)

	// Invalid JSON
	rawReq, _ := http.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString("invalid json"))
	rawReq.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, rawReq)
	AssertErrorResponse(t, w, http.StatusBadRequest)
}

// TestAuthHandler_Login_InvalidCredentials tests login with wrong username or password
func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	router := SetupTestRouter()
	passwordHash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)
	cfg := &config.BootstrapConfig{
		Admin: &config.AdminConfig{
			Enabled:      true,
			Username:     "admin",
			PasswordHash: string(passwordHash),
			JWTSecret:    "test-secret-that-is-long-enough-123456",
		},
	}

	handler := NewAuthHandler(cfg)
	router.POST("/api/v1/auth/login", handler.Login)

	// Wrong username
	req := CreateTestRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "wrong_user",
		"password": "correct_password",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusUnauthorized)

	// Wrong password
	req = CreateTestRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "wrong_password",
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusUnauthorized)
}

// TestAuthHandler_Login_Success tests a successful login and token validity
func TestAuthHandler_Login_Success(t *testing.T) {
	router := SetupTestRouter()
	passwordHash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)
	cfg := &config.BootstrapConfig{
		Admin: &config.AdminConfig{
			Enabled:         true,
			Username:        "admin",
			PasswordHash:    string(passwordHash),
			JWTSecret:       "test-secret-that-is-long-enough-123456",
			TokenExpiration: 24,
		},
	}

	handler := NewAuthHandler(cfg)
	router.POST("/api/v1/auth/login", handler.Login)

	req := CreateTestRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "admin",
		"password": "correct_password",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a non-empty token")
	}
	if resp.ExpiresAt == "" {
		t.Error("Expected a non-empty expires_at")
	}

	// The issued token must validate
	username, err := handler.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("Issued token failed validation: %v", err)
	}
	if username != "admin" {
		t.Errorf("Expected username admin, got %s", username)
	}
}

// TestAuthHandler_ValidateToken tests token validation edge cases
func TestAuthHandler_ValidateToken(t *testing.T) {
	cfg := &config.BootstrapConfig{
		Admin: &config.AdminConfig{
			Enabled:   true,
			Username:  "admin",
			JWTSecret: "test-secret-that-is-long-enough-123456",
		},
	}
	handler := NewAuthHandler(cfg)

	// Garbage token
	if _, err := handler.ValidateToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}

	// Token signed with a different secret
	otherClaims := jwt.MapClaims{"username": "admin"}
	otherToken := jwt.NewWithClaims(jwt.SigningMethodHS256, otherClaims)
	signed, _ := otherToken.SignedString([]byte("a-completely-different-secret"))
	if _, err := handler.ValidateToken(signed); err == nil {
		t.Error("Expected error for token signed with wrong secret")
	}

	// Missing admin config
	noAdmin := NewAuthHandler(&config.BootstrapConfig{})
	if _, err := noAdmin.ValidateToken("anything"); err == nil {
		t.Error("Expected error when admin config is nil")
	}

	// Empty JWT secret
	emptySecret := NewAuthHandler(&config.BootstrapConfig{
		Admin: &config.AdminConfig{Enabled: true},
	})
	if _, err := emptySecret.ValidateToken("anything"); err == nil {
		t.Error("Expected error when JWT secret is empty")
	}
}

// TestAuthHandler_Me tests the authenticated identity endpoint
func TestAuthHandler_Me(t *testing.T) {
	router := SetupTestRouter()
	handler := NewAuthHandler(&config.BootstrapConfig{})

	// Simulate the auth middleware setting the username
	router.GET("/api/v1/auth/me", func(c *gin.Context) {
		c.Set("username", "admin")
	}, handler.Me)

	req := CreateTestRequest("GET", "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertJSONResponse(t, w, http.StatusOK, map[string]interface{}{"username": "admin"})

	// Without the middleware the endpoint rejects the request
	router2 := SetupTestRouter()
	router2.GET("/api/v1/auth/me", handler.Me)
	w = httptest.NewRecorder()
	router2.ServeHTTP(w, CreateTestRequest("GET", "/api/v1/auth/me", nil))
	AssertErrorResponse(t, w, http.StatusUnauthorized)
}

// TestAuthHandler_SetupStatus tests the first-run setup status endpoint
func TestAuthHandler_SetupStatus(t *testing.T) {
	// Needs setup when no password hash exists
	router := SetupTestRouter()
	cfg := &config.BootstrapConfig{
		Admin: &config.AdminConfig{Enabled: true},
	}
	handler := NewAuthHandler(cfg)
	router.GET("/api/v1/auth/setup/status", handler.GetSetupStatus)

	req := CreateTestRequest("GET", "/api/v1/auth/setup/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp SetupStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.NeedsSetup {
		t.Error("Expected needs_setup to be true")
	}

	// Hidden once a password hash is set
	router2 := SetupTestRouter()
	cfg2 := &config.BootstrapConfig{
		Admin: &config.AdminConfig{Enabled: true, PasswordHash: "some-hash"},
	}
	handler2 := NewAuthHandler(cfg2)
	router2.GET("/api/v1/auth/setup/status", handler2.GetSetupStatus)

	w = httptest.NewRecorder()
	router2.ServeHTTP(w, CreateTestRequest("GET", "/api/v1/auth/setup/status", nil))
	AssertErrorResponse(t, w, http.StatusNotFound)
}

// TestAuthHandler_SetupPassword tests the first-run password setup flow
func TestAuthHandler_SetupPassword(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bootstrap.yaml")
	if err := config.CreateDefaultBootstrap(configPath); err != nil {
		t.Fatalf("Failed to create bootstrap config: %v", err)
	}

	cfg, err := config.LoadBootstrap(configPath)
	if err != nil {
		t.Fatalf("Failed to load bootstrap config: %v", err)
	}
	cfg.Admin.PasswordHash = ""

	router := SetupTestRouter()
	handler := NewAuthHandlerWithConfigPath(cfg, configPath)
	router.POST("/api/v1/auth/setup", handler.SetupPassword)

	// Mismatched passwords
	req := CreateTestRequest("POST", "/api/v1/auth/setup", map[string]interface{}{
		"password":         "Valid-Pass1!",
		"confirm_password": "Different-Pass1!",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusBadRequest)

	// Too weak
	req = CreateTestRequest("POST", "/api/v1/auth/setup", map[string]interface{}{
		"password":         "weak",
		"confirm_password": "weak",
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusBadRequest)

	// Valid setup
	req = CreateTestRequest("POST", "/api/v1/auth/setup", map[string]interface{}{
		"password":         "Valid-Pass1!",
		"confirm_password": "Valid-Pass1!",
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if cfg.Admin.PasswordHash == "" {
		t.Error("Expected password hash to be set after setup")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.Admin.PasswordHash), []byte("Valid-Pass1!")); err != nil {
		t.Errorf("Stored hash does not match the password: %v", err)
	}

	// Config file on disk must carry the hash too
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("Config file missing after setup: %v", err)
	}

	// Second attempt is hidden
	req = CreateTestRequest("POST", "/api/v1/auth/setup", map[string]interface{}{
		"password":         "Another-Pass1!",
		"confirm_password": "Another-Pass1!",
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	AssertErrorResponse(t, w, http.StatusNotFound)
}
