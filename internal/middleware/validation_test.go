package middleware

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{
			name:    "ulid",
			id:      "01HZX3V6J8Q4M2N7P9R5S1T0WY",
			wantErr: nil,
		},
		{
			name:    "object id hex",
			id:      "65a1f0c2e4b0a1b2c3d4e5f6",
			wantErr: nil,
		},
		{
			name:    "empty",
			id:      "",
			wantErr: ErrUserIDEmpty,
		},
		{
			name:    "too long",
			id:      strings.Repeat("a", MaxUserIDLength+1),
			wantErr: ErrUserIDTooLong,
		},
		{
			name:    "path traversal",
			id:      "../etc",
			wantErr: ErrUserIDInvalid,
		},
		{
			name:    "query injection",
			id:      `{"$ne":null}`,
			wantErr: ErrUserIDInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserID(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUserID(%q) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}
