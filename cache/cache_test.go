package cache

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{
			name: "valid key",
			key:  "perm:abc123",
		},
		{
			name:    "empty key",
			key:     "",
			wantErr: ErrInvalidKey,
		},
		{
			name:    "whitespace key",
			key:     "   ",
			wantErr: ErrInvalidKey,
		},
		{
			name:    "newline in key",
			key:     "perm:\nabc",
			wantErr: ErrInvalidKey,
		},
		{
			name:    "too long",
			key:     strings.Repeat("a", MaxKeyLength+1),
			wantErr: ErrKeyTooLong,
		},
		{
			name: "exactly max length",
			key:  strings.Repeat("a", MaxKeyLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
