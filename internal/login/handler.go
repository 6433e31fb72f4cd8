// Package login authenticates the admin credential pair and issues tokens.
package login

import (
	"context"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"deskgate/internal/core"
	"deskgate/internal/middleware/auth"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

const (
	// MaxEmailLength bounds the submitted email
	MaxEmailLength = 160
	// MaxPasswordLength bounds the submitted password
	MaxPasswordLength = 200
)

// Client-facing messages
const (
	MsgRequired           = "Email and password are required"
	MsgTooLong            = "Credentials too long"
	MsgInvalidCredentials = "Invalid credentials"
)

// TokenIssuer mints admin tokens
type TokenIssuer interface {
	Issue(ctx context.Context, email string, role auth.Role) (string, *auth.Claims, error)
}

// Config holds the admin account
type Config struct {
	Email    string
	Password string
	Role     auth.Role
}

// Handler serves the admin login route
type Handler struct {
	issuer  TokenIssuer
	matcher *Matcher
	email   string
	role    auth.Role
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler creates a login handler. A nil issuer or an incomplete admin
// account makes every login fail with an internal error.
func NewHandler(cfg Config, issuer TokenIssuer, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Role == "" {
		cfg.Role = auth.RoleSuperAdmin
	}

	h := &Handler{
		issuer:  issuer,
		email:   normalizeEmail(cfg.Email),
		role:    cfg.Role,
		logger:  logger,
		metrics: m,
	}
	if cfg.Email != "" && cfg.Password != "" {
		h.matcher = NewMatcher(cfg.Email, cfg.Password)
	}
	return h
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// Handle authenticates the submitted credentials
func (h *Handler) Handle(ctx context.Context, req core.Request) (core.Response, error) {
	email, password, err := credentials(req.Payload())
	if err != nil {
		h.record("bad_request")
		return nil, err
	}

	if h.matcher == nil || h.issuer == nil {
		h.logger.Error("Login attempted without admin credentials or signing secret",
			"request_id", req.ID(),
		)
		h.record("not_configured")
		return nil, errors.NewError(errors.ErrorTypeInternal, auth.MsgNotConfigured)
	}

	if !h.matcher.Match(email, password) {
		h.logger.Warn("Admin login failed", "request_id", req.ID(), "remote_addr", req.RemoteAddr())
		h.record("invalid")
		return nil, errors.NewError(errors.ErrorTypeUnauthorized, MsgInvalidCredentials)
	}

	token, claims, err := h.issuer.Issue(ctx, h.email, h.role)
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			h.record("not_configured")
			return nil, errors.NewError(errors.ErrorTypeInternal, auth.MsgNotConfigured).WithCause(err)
		}
		h.record("error")
		return nil, errors.Wrap(err, "issue admin token")
	}

	h.logger.Info("Admin login succeeded",
		"request_id", req.ID(),
		"email", claims.Email,
		"role", claims.Role,
		"jti", claims.ID,
		"expires_at", claims.ExpiresAt.Format(time.RFC3339),
	)
	h.record("success")
	if h.metrics != nil {
		h.metrics.TokensIssued.Inc()
	}

	return core.NewJSONResponse(http.StatusOK, loginResponse{
		Token: token,
		User:  userResponse{Email: claims.Email, Role: claims.Role},
	})
}

func (h *Handler) record(result string) {
	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

// credentials pulls the email and password out of the decoded body
func credentials(p *core.Payload) (string, string, error) {
	var body map[string]any
	if p != nil {
		body, _ = p.Body.(map[string]any)
	}
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	if email == "" || password == "" {
		return "", "", errors.NewError(errors.ErrorTypeBadRequest, MsgRequired)
	}
	if utf8.RuneCountInString(email) > MaxEmailLength || utf8.RuneCountInString(password) > MaxPasswordLength {
		return "", "", errors.NewError(errors.ErrorTypeBadRequest, MsgTooLong)
	}
	return email, password, nil
}
