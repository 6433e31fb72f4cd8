package auth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"
)

// Role is an admin role. The set of roles is closed: anything else is
// rejected when a token is decoded.
type Role string

const (
	// RoleSuperAdmin can use every admin and debug route
	RoleSuperAdmin Role = "super_admin"
	// RoleEditor manages content across desks
	RoleEditor Role = "editor"
	// RoleWriter drafts content
	RoleWriter Role = "writer"
)

// ParseRole converts s to a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleEditor, RoleWriter:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown roles
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalYAML rejects unknown roles in configuration
func (r *Role) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Claims is the verified identity carried by an admin token
type Claims struct {
	Email     string
	Role      Role
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Verifier verifies bearer tokens
type Verifier interface {
	// Verify checks the token and returns its claims
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Extractor extracts a bearer token from request headers
type Extractor interface {
	Extract(ctx context.Context, headers map[string][]string) (string, error)
}

// Failure causes reported by verifiers and extractors. The gate maps them to
// client messages; the specific cause only reaches the logs.
var (
	ErrMissingToken   = stderrors.New("missing token")
	ErrMalformedToken = stderrors.New("malformed token")
	ErrInvalidToken   = stderrors.New("invalid token")
	ErrNotConfigured  = stderrors.New("signing secret not configured")
)
