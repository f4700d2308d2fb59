package config

import (
	"strings"
	"testing"

	"github.com/qrforge/qrforge/pkg/errors"
)

func TestValidatePassword(t *testing.T) {
	req := DefaultPasswordRequirements()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password with all requirements",
			password: "MyP@ssw0rd!",
			wantErr:  false,
		},
		{
			name:     "valid password with minimum length",
			password: "Ab1!abcd",
			wantErr:  false,
		},
		{
			name:     "too short",
			password: "Ab1!abc",
			wantErr:  true,
		},
		{
			name:     "missing uppercase",
			password: "myp@ssw0rd!",
			wantErr:  true,
		},
		{
			name:     "missing lowercase",
			password: "MYP@SSW0RD!",
			wantErr:  true,
		},
		{
			name:     "missing digit",
			password: "MyP@ssword!",
			wantErr:  true,
		},
		{
			name:     "missing special character",
			password: "MyPassw0rd1",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "only lowercase",
			password: "abcdefghij",
			wantErr:  true,
		},
		{
			name:     "only digits",
			password: "1234567890",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAdminConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *AdminConfig
		wantErr  bool
		wantCode errors.ErrorCode
	}{
		{
			name:    "nil config - should pass",
			cfg:     nil,
			wantErr: false,
		},
		{
			name: "disabled admin - should pass",
			cfg: &AdminConfig{
				Enabled:      false,
				Username:     "",
				PasswordHash: "",
			},
			wantErr: false,
		},
		{
			name: "valid admin config with bcrypt hash",
			cfg: &AdminConfig{
				Enabled:      true,
				Username:     "admin",
				PasswordHash: "$2a$10$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq", // valid bcrypt hash
				JWTSecret:    "this-is-a-32-character-secret!!!",                             // exactly 32 chars
			},
			wantErr: false,
		},
		{
			name: "empty username",
			cfg: &AdminConfig{
				Enabled:      true,
				Username:     "",
				PasswordHash: "$2a$10$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq",
				JWTSecret:    "12345678901234567890123456789012",
			},
			wantErr:  true,
			wantCode: errors.ErrCodeAdminCredentialsEmpty,
		},
		{
			name: "empty password_hash - should pass (can be set after startup)",
			cfg: &AdminConfig{
				Enabled:      true,
				Username:     "admin",
				PasswordHash: "",
				JWTSecret:    "12345678901234567890123456789012",
			},
			wantErr: false,
		},
		{
			name: "whitespace only username",
			cfg: &AdminConfig{
				Enabled:      true,
				Username:     "   ",
				PasswordHash: "$2a$10$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq",
				JWTSecret:    "12345678901234567890123456789012",
			},
			wantErr:  true,
			wantCode: errors.ErrCodeAdminCredentialsEmpty,
		},
		{
			name: "empty jwt secret",
			cfg: &AdminConfig{
				Enabled:      true,
				Username:     "admin",
				PasswordHash: "$2a$10$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq",
				JWTSecret:    "",
			},
			wantErr:  true,
			wantCode: errors.ErrCodeJWTSecretInvalid,
		},
		{
			name: "jwt secret too short",
			cfg: &AdminConfig{
				Enabled:      true,
				Username:     "admin",
				PasswordHash: "$2a$10$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq",
				JWTSecret:    "short-secret", // less than 32 chars
			},
			wantErr:  true,
			wantCode: errors.ErrCodeJWTSecretInvalid,
		},
		{
			name: "jwt secret exactly 32 chars",
			cfg: &AdminConfig{
				Enabled:      true,
				Username:     "admin",
				PasswordHash: "$2a$10$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq",
				JWTSecret:    "12345678901234567890123456789012", // exactly 32 chars
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.wantCode != "" && err.Code != tt.wantCode {
				t.Errorf("ValidateAdminConfig() code = %v, wantCode %v", err.Code, tt.wantCode)
			}
		})
	}
}

func TestValidateExportConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ExportConfig
		wantErr bool
	}{
		{
			name:    "nil config - should pass",
			cfg:     nil,
			wantErr: false,
		},
		{
			name: "valid defaults",
			cfg: &ExportConfig{
				PageSize:      "a4",
				Orientation:   "portrait",
				RetentionDays: 30,
				MaxConcurrent: 4,
			},
			wantErr: false,
		},
		{
			name: "letter landscape",
			cfg: &ExportConfig{
				PageSize:    "letter",
				Orientation: "landscape",
			},
			wantErr: false,
		},
		{
			name: "legal uppercase is accepted",
			cfg: &ExportConfig{
				PageSize:    "LEGAL",
				Orientation: "Portrait",
			},
			wantErr: false,
		},
		{
			name: "empty values use defaults",
			cfg:  &ExportConfig{},
		},
		{
			name: "invalid page size",
			cfg: &ExportConfig{
				PageSize: "tabloid",
			},
			wantErr: true,
		},
		{
			name: "invalid orientation",
			cfg: &ExportConfig{
				Orientation: "diagonal",
			},
			wantErr: true,
		},
		{
			name: "negative retention days",
			cfg: &ExportConfig{
				RetentionDays: -1,
			},
			wantErr: true,
		},
		{
			name: "negative max concurrent",
			cfg: &ExportConfig{
				MaxConcurrent: -2,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExportConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExportConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidBcryptHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want bool
	}{
		{
			name: "valid 2a hash",
			hash: "$2a$10$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq",
			want: true,
		},
		{
			name: "valid 2b hash",
			hash: "$2b$12$YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMq",
			want: true,
		},
		{
			name: "too short",
			hash: "$2a$10$short",
			want: false,
		},
		{
			name: "wrong prefix",
			hash: "sha256:YtJ6lCmNwS7g9IpuaR7nPOE/M/3.G6VdMBm7eJdLpSfnLdG/CvxMqxx",
			want: false,
		},
		{
			name: "empty string",
			hash: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidBcryptHash(tt.hash); got != tt.want {
				t.Errorf("IsValidBcryptHash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatPasswordRequirements(t *testing.T) {
	result := FormatPasswordRequirements()

	// Should contain key requirements
	if result == "" {
		t.Error("FormatPasswordRequirements() returned empty string")
	}

	expectedParts := []string{
		"8 characters",
		"uppercase",
		"lowercase",
		"digit",
		"special character",
	}

	for _, part := range expectedParts {
		if !strings.Contains(result, part) {
			t.Errorf("FormatPasswordRequirements() should contain %q", part)
		}
	}
}
