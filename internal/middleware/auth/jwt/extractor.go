package jwt

import (
	"context"
	"strings"

	"deskgate/internal/middleware/auth"
)

// Extractor extracts bearer tokens from requests
type Extractor struct {
	// HeaderName is the header to extract token from (default: Authorization)
	HeaderName string
	// Scheme is the auth scheme (default: Bearer)
	Scheme string
}

// NewExtractor creates a new bearer token extractor
func NewExtractor() *Extractor {
	return &Extractor{
		HeaderName: "Authorization",
		Scheme:     "Bearer",
	}
}

// Extract extracts the bearer token from request headers
func (e *Extractor) Extract(ctx context.Context, headers map[string][]string) (string, error) {
	for _, header := range lookup(headers, e.HeaderName) {
		if token := e.extractFromAuthHeader(header); token != "" {
			return token, nil
		}
	}
	return "", auth.ErrMissingToken
}

// extractFromAuthHeader extracts token from Authorization header
func (e *Extractor) extractFromAuthHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}

	if !strings.EqualFold(parts[0], e.Scheme) {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// lookup finds header values by case-insensitive name
func lookup(headers map[string][]string, name string) []string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

var _ auth.Extractor = (*Extractor)(nil)
