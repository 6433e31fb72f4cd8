package factory

import (
	"log/slog"

	"deskgate/internal/config"
	"deskgate/internal/login"
	"deskgate/internal/middleware/auth"
	"deskgate/internal/middleware/auth/jwt"
	"deskgate/pkg/errors"
	"deskgate/pkg/metrics"
)

// CreateTokenProvider creates the admin token provider. A provider without
// a secret is still returned: it fails every issue and verify, which the
// gate and login handler turn into a 500.
func CreateTokenProvider(cfg *config.Auth, logger *slog.Logger) *jwt.Provider {
	provider := jwt.NewProvider(jwt.Config{
		Secret:   cfg.Secret,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		TTL:      cfg.TokenTTL,
	})
	if !provider.Configured() {
		logger.Warn("Admin auth secret is not set; admin routes will answer 500")
	}
	return provider
}

// CreateGate creates the authorization gate over provider
func CreateGate(provider *jwt.Provider, logger *slog.Logger, m *metrics.Metrics) *auth.Gate {
	return auth.NewGate(auth.GateConfig{
		Verifier:  provider,
		Extractor: jwt.NewExtractor(),
		Logger:    logger.With("middleware", "auth"),
		Metrics:   m,
	})
}

// CreateLoginHandler creates the admin login handler
func CreateLoginHandler(cfg *config.Auth, provider *jwt.Provider, logger *slog.Logger, m *metrics.Metrics) (*login.Handler, error) {
	role, err := auth.ParseRole(cfg.AdminRole)
	if err != nil {
		return nil, errors.NewError(errors.ErrorTypeInternal, "invalid admin role").WithCause(err)
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Warn("Admin credentials are not set; login will answer 500")
	}

	return login.NewHandler(login.Config{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     role,
	}, provider, logger.With("component", "login"), m), nil
}
