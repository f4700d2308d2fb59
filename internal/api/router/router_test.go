package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/qrforge/qrforge/internal/config"
	"github.com/qrforge/qrforge/internal/store"
	"github.com/qrforge/qrforge/pkg/logger"
)

// mockStore is a minimal mock implementation of store.Store
type mockStore struct{}

func (m *mockStore) Export() store.ExportStore {
	return nil
}

func (m *mockStore) Settings() store.SettingsStore {
	return nil
}

func (m *mockStore) DB() *gorm.DB {
	return nil
}

func (m *mockStore) Transaction(fn func(store.Store) error) error {
	return fn(m)
}

func testConfig() *config.BootstrapConfig {
	return &config.BootstrapConfig{
		Server: config.ServerConfig{
			Debug:       false,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Logging: logger.Config{
			AccessLog: false,
		},
		Admin: &config.AdminConfig{
			Enabled:   true,
			Username:  "admin",
			JWTSecret: "test-secret-key-for-testing-only",
		},
	}
}

func TestSetup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	Setup(r, testConfig(), &mockStore{})

	// Test health check endpoint
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestPublicRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	Setup(r, testConfig(), &mockStore{})

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "health check",
			method:         "GET",
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "auth setup status",
			method:         "GET",
			path:           "/api/v1/auth/setup/status",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "app meta",
			method:         "GET",
			path:           "/api/v1/meta",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "theme listing",
			method:         "GET",
			path:           "/api/v1/themes",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "server status",
			method:         "GET",
			path:           "/api/v1/status",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	Setup(r, testConfig(), &mockStore{})

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		description    string
	}{
		{
			name:           "exports list without auth",
			method:         "GET",
			path:           "/api/v1/exports",
			expectedStatus: http.StatusUnauthorized,
			description:    "Should require JWT authentication",
		},
		{
			name:           "create export without auth",
			method:         "POST",
			path:           "/api/v1/exports",
			expectedStatus: http.StatusUnauthorized,
			description:    "Should require JWT authentication",
		},
		{
			name:           "qr preview without auth",
			method:         "POST",
			path:           "/api/v1/qrcodes/preview",
			expectedStatus: http.StatusUnauthorized,
			description:    "Should require JWT authentication",
		},
		{
			name:           "admin stats without auth",
			method:         "GET",
			path:           "/api/v1/admin/stats",
			expectedStatus: http.StatusUnauthorized,
			description:    "Should require JWT authentication",
		},
		{
			name:           "auth me without auth",
			method:         "GET",
			path:           "/api/v1/auth/me",
			expectedStatus: http.StatusUnauthorized,
			description:    "Should require JWT authentication",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, tt.description)
		})
	}
}

func TestCORSConfiguration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	cfg := testConfig()
	cfg.Server.CORSOrigins = []string{"http://localhost:3000", "https://example.com"}
	Setup(r, cfg, &mockStore{})

	// Test CORS preflight request
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)

	// CORS middleware should handle OPTIONS request (returns 204 No Content)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	Setup(r, testConfig(), &mockStore{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
