package login

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"
)

// Matcher compares submitted credentials with the configured admin
// credentials in time that does not depend on where they differ.
//
// Both sides are hashed to fixed-length digests before comparison, so the
// lengths of the configured secrets do not leak either. The email and the
// password are always both compared.
type Matcher struct {
	email    [sha256.Size]byte
	password [sha256.Size]byte
	digest   func([]byte) [sha256.Size]byte
}

// NewMatcher creates a matcher for the admin credentials
func NewMatcher(email, password string) *Matcher {
	m := &Matcher{digest: sha256.Sum256}
	m.email = m.digest([]byte(normalizeEmail(email)))
	m.password = m.digest([]byte(password))
	return m
}

// Match reports whether email and password are the admin credentials
func (m *Matcher) Match(email, password string) bool {
	e := m.digest([]byte(normalizeEmail(email)))
	p := m.digest([]byte(password))

	emailOK := subtle.ConstantTimeCompare(e[:], m.email[:])
	passwordOK := subtle.ConstantTimeCompare(p[:], m.password[:])
	return emailOK&passwordOK == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
