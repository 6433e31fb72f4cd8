package jwt

import (
	"context"
	"errors"
	"testing"

	"deskgate/internal/middleware/auth"
)

func TestExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string][]string
		want    string
		wantErr bool
	}{
		{
			name:    "bearer token",
			headers: map[string][]string{"Authorization": {"Bearer abc.def.ghi"}},
			want:    "abc.def.ghi",
		},
		{
			name:    "scheme is case insensitive",
			headers: map[string][]string{"Authorization": {"bearer abc.def.ghi"}},
			want:    "abc.def.ghi",
		},
		{
			name:    "lower-case header name",
			headers: map[string][]string{"authorization": {"Bearer abc.def.ghi"}},
			want:    "abc.def.ghi",
		},
		{
			name:    "missing header",
			headers: map[string][]string{},
			wantErr: true,
		},
		{
			name:    "other scheme",
			headers: map[string][]string{"Authorization": {"Basic dXNlcjpwYXNz"}},
			wantErr: true,
		},
		{
			name:    "empty token",
			headers: map[string][]string{"Authorization": {"Bearer   "}},
			wantErr: true,
		},
	}

	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), tt.headers)
			if tt.wantErr {
				if !errors.Is(err, auth.ErrMissingToken) {
					t.Errorf("Extract() error = %v, want ErrMissingToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}
