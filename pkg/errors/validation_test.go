package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "zlib", false},
		{"valid prefixed", "mingw-w64-headers-git", false},
		{"valid with plus", "mingw-w64-libc++", false},
		{"valid with dot", "python3.12", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if tt.wantErr {
				assert.True(t, Is(err, ErrCodeInvalidPackage), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://packages.msys2.org/api/trigger_update", false},
		{"http", "http://127.0.0.1:8080", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"no scheme", "packages.msys2.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateURL(%q) = %v", tt.input, err)
		})
	}
}
