package auth

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"

	"deskgate/internal/core"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

// Client-facing messages
const (
	MsgMissingToken  = "Missing admin token"
	MsgInvalidToken  = "Invalid admin token"
	MsgExpiredToken  = "Invalid or expired token"
	MsgForbidden     = "Forbidden"
	MsgNotConfigured = "Admin auth is not configured"
)

// GateConfig configures a Gate
type GateConfig struct {
	// Verifier checks tokens; nil means admin auth is not configured
	Verifier  Verifier
	Extractor Extractor
	Logger    *slog.Logger
	// Metrics is optional
	Metrics *metrics.Metrics
}

// Gate verifies bearer tokens and enforces role allow-lists. One gate
// serves every protected route; Require binds it to a route's roles.
type Gate struct {
	verifier  Verifier
	extractor Extractor
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewGate creates a new authorization gate
func NewGate(cfg GateConfig) *Gate {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Gate{
		verifier:  cfg.Verifier,
		extractor: cfg.Extractor,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Require returns middleware admitting only callers with one of roles.
// With no roles any authenticated caller is admitted.
func (g *Gate) Require(roles ...Role) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, req core.Request) (core.Response, error) {
			claims, err := g.authenticate(ctx, req)
			if err != nil {
				return nil, err
			}

			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				g.reject(req, "role_not_allowed", nil, "email", claims.Email, "role", claims.Role)
				return nil, errors.NewError(errors.ErrorTypeForbidden, MsgForbidden).
					WithDetail("role", claims.Role)
			}

			return next(WithClaims(ctx, claims), req)
		}
	}
}

// authenticate resolves the caller's claims or a client-safe error
func (g *Gate) authenticate(ctx context.Context, req core.Request) (*Claims, error) {
	if g.verifier == nil || g.extractor == nil {
		g.reject(req, "not_configured", nil)
		return nil, errors.NewError(errors.ErrorTypeInternal, MsgNotConfigured)
	}

	token, err := g.extractor.Extract(ctx, req.Headers())
	if err != nil {
		g.reject(req, "missing_token", err)
		return nil, errors.NewError(errors.ErrorTypeUnauthorized, MsgMissingToken).WithCause(err)
	}

	claims, err := g.verifier.Verify(ctx, token)
	switch {
	case err == nil:
		return claims, nil
	case stderrors.Is(err, ErrNotConfigured):
		g.reject(req, "not_configured", err)
		return nil, errors.NewError(errors.ErrorTypeInternal, MsgNotConfigured).WithCause(err)
	case stderrors.Is(err, ErrMalformedToken):
		g.reject(req, "malformed_token", err)
		return nil, errors.NewError(errors.ErrorTypeUnauthorized, MsgInvalidToken).WithCause(err)
	default:
		g.reject(req, "invalid_token", err)
		return nil, errors.NewError(errors.ErrorTypeUnauthorized, MsgExpiredToken).WithCause(err)
	}
}

func (g *Gate) reject(req core.Request, reason string, err error, attrs ...any) {
	args := append([]any{
		"reason", reason,
		"request_id", req.ID(),
		"method", req.Method(),
		"path", req.Path(),
	}, attrs...)
	if err != nil {
		args = append(args, "error", err)
	}
	g.logger.Warn("Admin request rejected", args...)

	if g.metrics != nil {
		g.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

// Context keys
type contextKey string

const claimsKey contextKey = "claims"

// WithClaims stores verified claims in context
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves verified claims from context
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
