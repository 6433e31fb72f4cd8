// Package jwt issues and verifies HS256 admin tokens.
package jwt

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"deskgate/internal/middleware/auth"
)

const (
	// MaxTokenLength bounds the tokens that are parsed at all
	MaxTokenLength = 4096
	// DefaultTTL is the lifetime of issued tokens
	DefaultTTL = 7 * 24 * time.Hour

	signingMethod = "HS256"
)

var tokenShape = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)

// Config represents JWT provider configuration
type Config struct {
	// Secret is the HMAC signing secret; empty disables admin auth
	Secret string `yaml:"secret"`
	// Issuer is set on issued tokens and required on verified ones
	Issuer string `yaml:"issuer"`
	// Audience is set on issued tokens and required on verified ones
	Audience string `yaml:"audience"`
	// TTL is the lifetime of issued tokens
	TTL time.Duration `yaml:"tokenTTL"`
}

// tokenClaims is the wire form of auth.Claims
type tokenClaims struct {
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
	jwt.RegisteredClaims
}

// Provider issues and verifies admin tokens
type Provider struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	parser   *jwt.Parser
	now      func() time.Time
	newID    func() string
}

// NewProvider creates a new JWT provider
func NewProvider(config Config) *Provider {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}

	p := &Provider{
		secret:   []byte(config.Secret),
		issuer:   config.Issuer,
		audience: config.Audience,
		ttl:      config.TTL,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	p.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithAudience(config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return p.now() }),
	)
	return p
}

// Configured reports whether a signing secret is present
func (p *Provider) Configured() bool {
	return len(p.secret) > 0
}

// Issue signs a token for email with role
func (p *Provider) Issue(ctx context.Context, email string, role auth.Role) (string, *auth.Claims, error) {
	if !p.Configured() {
		return "", nil, auth.ErrNotConfigured
	}
	if !role.Valid() {
		return "", nil, fmt.Errorf("issue token: unknown role %q", role)
	}

	now := p.now()
	claims := tokenClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   email,
			Audience:  jwt.ClaimStrings{p.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        p.newID(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.identity(), nil
}

// Verify checks a token's shape, signature, issuer, audience and lifetime.
// Tokens that are not even shaped like a JWT fail with auth.ErrMalformedToken
// before any cryptographic work is done.
func (p *Provider) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if !p.Configured() {
		return nil, auth.ErrNotConfigured
	}
	if len(token) > MaxTokenLength || !tokenShape.MatchString(token) {
		return nil, auth.ErrMalformedToken
	}

	var claims tokenClaims
	if _, err := p.parser.ParseWithClaims(token, &claims, p.keyFunc); err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}
	if claims.Email == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing email or role claim", auth.ErrInvalidToken)
	}

	return claims.identity(), nil
}

// keyFunc returns the key for validating the token
func (p *Provider) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != signingMethod {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
	}
	return p.secret, nil
}

func (c *tokenClaims) identity() *auth.Claims {
	id := &auth.Claims{
		Email: c.Email,
		Role:  c.Role,
		ID:    c.ID,
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

var _ auth.Verifier = (*Provider)(nil)
