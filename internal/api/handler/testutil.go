// Package handler provides test utilities for HTTP handler testing.
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/qrforge/qrforge/internal/config"
	"github.com/qrforge/qrforge/internal/store"
)

// SetupTestRouter creates a Gin router for testing.
// It sets Gin to test mode and applies basic middleware.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// SetupTestStore creates a temporary SQLite-backed store for handler tests.
func SetupTestStore(t *testing.T) (store.Store, func()) {
	t.Helper()
	return store.SetupTestDB(t)
}

// NewTestConfig returns a bootstrap config suitable for handler tests.
// Exports are written into a per-test temporary directory.
func NewTestConfig(t *testing.T) *config.BootstrapConfig {
	t.Helper()
	cfg := config.DefaultBootstrapConfig()
	cfg.Export.OutputDir = t.TempDir()
	cfg.Export.MaxConcurrent = 2
	return cfg
}

// CreateTestRequest creates an HTTP request for testing.
func CreateTestRequest(method, url string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	return req
}

// AssertJSONResponse asserts that the response has the expected JSON structure.
func AssertJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	t.Helper()

	if recorder.Code != expectedStatus {
		t.Errorf("Status code mismatch: got %d, want %d", recorder.Code, expectedStatus)
	}

	contentType := recorder.Header().Get("Content-Type")
	if contentType != "" && contentType != "application/json" && contentType != "application/json; charset=utf-8" {
		t.Errorf("Content-Type should be application/json, got %s", contentType)
	}

	if expectedBody != nil {
		var actual map[string]interface{}
		if err := json.Unmarshal(recorder.Body.Bytes(), &actual); err != nil {
			t.Fatalf("Response should be valid JSON: %v", err)
		}

		expectedJSON, err := json.Marshal(expectedBody)
		if err != nil {
			t.Fatalf("Failed to marshal expected body: %v", err)
		}

		var expected map[string]interface{}
		if err := json.Unmarshal(expectedJSON, &expected); err != nil {
			t.Fatalf("Failed to unmarshal expected JSON: %v", err)
		}

		// Compare JSON structures (allowing for additional fields in actual)
		for key, expectedValue := range expected {
			actualValue, exists := actual[key]
			if !exists {
				t.Errorf("Response should contain key: %s", key)
				continue
			}
			if actualValue != expectedValue {
				t.Errorf("Value mismatch for key %s: got %v, want %v", key, actualValue, expectedValue)
			}
		}
	}
}

// AssertErrorResponse asserts that the response is an error response.
// The API uses a standard error format with 'code' and 'message' fields.
func AssertErrorResponse(t *testing.T, recorder *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if recorder.Code != expectedStatus {
		t.Errorf("Status code mismatch: got %d, want %d", recorder.Code, expectedStatus)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response should be valid JSON: %v", err)
	}

	_, hasCode := response["code"]
	_, hasMessage := response["message"]
	_, hasError := response["error"]

	if !hasError && !(hasCode && hasMessage) {
		t.Error("Error response should contain either 'error' field or 'code' and 'message' fields")
	}
}
