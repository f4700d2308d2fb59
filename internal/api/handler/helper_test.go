package handler

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestParsePagination tests pagination parameter parsing and bounds
func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", 1, 20},
		{"explicit values", "page=3&page_size=50", 3, 50},
		{"small page size allowed", "page_size=1", 1, 1},
		{"zero page", "page=0", 1, 20},
		{"negative page", "page=-5", 1, 20},
		{"zero page size", "page_size=0", 1, 20},
		{"oversized page size capped", "page_size=500", 1, 100},
		{"non-numeric", "page=abc&page_size=xyz", 1, 20},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			page, pageSize := parsePagination(c)
			if page != tt.wantPage {
				t.Errorf("page = %d, want %d", page, tt.wantPage)
			}
			if pageSize != tt.wantPageSize {
				t.Errorf("pageSize = %d, want %d", pageSize, tt.wantPageSize)
			}
		})
	}
}

// TestValidateFilename tests path traversal rejection
func TestValidateFilename(t *testing.T) {
	valid := []string{
		"url-my-site-2025-03-14T09-26-53Z.pdf",
		"document.pdf",
		"a.b.c.pdf",
	}
	for _, name := range valid {
		if !validateFilename(name) {
			t.Errorf("Expected %q to be valid", name)
		}
	}

	invalid := []string{
		"",
		"../etc/passwd",
		"..",
		".",
		"dir/file.pdf",
		"dir\\file.pdf",
		"file\x00.pdf",
		"a/../b.pdf",
	}
	for _, name := range invalid {
		if validateFilename(name) {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

// TestSafeJoinPath tests that joined paths stay inside the base directory
func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	path, ok := safeJoinPath(base, "export.pdf")
	if !ok {
		t.Fatal("Expected safe join to succeed")
	}
	if filepath.Dir(path) != base {
		t.Errorf("Expected path inside %s, got %s", base, path)
	}
	if !strings.HasSuffix(path, "export.pdf") {
		t.Errorf("Expected path ending in export.pdf, got %s", path)
	}

	for _, name := range []string{"../outside.pdf", "/etc/passwd", "a/b.pdf", ""} {
		if _, ok := safeJoinPath(base, name); ok {
			t.Errorf("Expected join with %q to fail", name)
		}
	}
}
