// Package idgen provides ID generation utilities for the application.
// This file contains unit tests for the idgen package.
package idgen

import (
	"regexp"
	"sync"
	"testing"
)

// TestNewID tests the NewID function
func TestNewID(t *testing.T) {
	t.Run("returns non-empty ID", func(t *testing.T) {
		id := NewID()
		if id == "" {
			t.Error("NewID() returned empty string")
		}
	})

	t.Run("returns 20 character ID", func(t *testing.T) {
		id := NewID()
		if len(id) != 20 {
			t.Errorf("NewID() returned ID with length %d, want 20", len(id))
		}
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		ids := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id := NewID()
			if ids[id] {
				t.Errorf("NewID() generated duplicate ID: %s", id)
			}
			ids[id] = true
		}
	})

	t.Run("generates URL-safe IDs", func(t *testing.T) {
		// xid uses base32 encoding which is URL-safe (alphanumeric)
		urlSafe := regexp.MustCompile(`^[a-z0-9]+$`)
		for i := 0; i < 100; i++ {
			id := NewID()
			if !urlSafe.MatchString(id) {
				t.Errorf("NewID() returned non-URL-safe ID: %s", id)
			}
		}
	})

	t.Run("concurrent generation is safe", func(t *testing.T) {
		var wg sync.WaitGroup
		ids := make(chan string, 1000)

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					ids <- NewID()
				}
			}()
		}

		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			if seen[id] {
				t.Errorf("Concurrent NewID() generated duplicate ID: %s", id)
			}
			seen[id] = true
		}
	})
}

// TestNewExportID tests the NewExportID function
func TestNewExportID(t *testing.T) {
	t.Run("returns valid ID", func(t *testing.T) {
		id := NewExportID()
		if id == "" {
			t.Error("NewExportID() returned empty string")
		}
		if len(id) != 20 {
			t.Errorf("NewExportID() returned ID with length %d, want 20", len(id))
		}
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		ids := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := NewExportID()
			if ids[id] {
				t.Errorf("NewExportID() generated duplicate ID: %s", id)
			}
			ids[id] = true
		}
	})
}

// TestNewRequestID tests the NewRequestID function
func TestNewRequestID(t *testing.T) {
	id := NewRequestID()
	if id == "" {
		t.Error("NewRequestID() returned empty string")
	}
	if len(id) != 20 {
		t.Errorf("NewRequestID() returned ID with length %d, want 20", len(id))
	}
}

// TestNewSecureSecret tests the NewSecureSecret function
func TestNewSecureSecret(t *testing.T) {
	t.Run("returns requested length", func(t *testing.T) {
		for _, length := range []int{16, 32, 64} {
			secret := NewSecureSecret(length)
			if len(secret) != length {
				t.Errorf("NewSecureSecret(%d) returned length %d", length, len(secret))
			}
		}
	})

	t.Run("generates unique secrets", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			secret := NewSecureSecret(32)
			if seen[secret] {
				t.Errorf("NewSecureSecret() generated duplicate: %s", secret)
			}
			seen[secret] = true
		}
	})

	t.Run("uses URL-safe characters", func(t *testing.T) {
		urlSafe := regexp.MustCompile(`^[A-Za-z0-9_=-]+$`)
		for i := 0; i < 100; i++ {
			secret := NewSecureSecret(32)
			if !urlSafe.MatchString(secret) {
				t.Errorf("NewSecureSecret() returned non-URL-safe secret: %s", secret)
			}
		}
	})
}
