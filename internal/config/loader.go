package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"deskgate/internal/middleware/auth"
	"deskgate/pkg/errors"
)

// Loader loads configuration from file
type Loader struct {
	path       string
	envEnabled bool
}

// NewLoader creates a config loader. An empty path loads only the
// embedded defaults.
func NewLoader(path string) *Loader {
	return &Loader{
		path:       path,
		envEnabled: true, // Enable env vars by default
	}
}

// WithEnvVars enables or disables environment variable loading
func (l *Loader) WithEnvVars(enabled bool) *Loader {
	l.envEnabled = enabled
	return l
}

// Load loads the configuration. The file is applied over the embedded
// defaults, so it only needs the values it changes.
func (l *Loader) Load() (*Config, error) {
	cfg, err := LoadDefault()
	if err != nil {
		return nil, errors.NewError(errors.ErrorTypeInternal, "failed to parse default config").WithCause(err)
	}

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, errors.NewError(errors.ErrorTypeInternal, "failed to read config file").WithCause(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewError(errors.ErrorTypeInternal, "failed to parse config").WithCause(err)
		}
	}

	// Override with environment variables if enabled
	if l.envEnabled {
		if err := LoadEnv(cfg); err != nil {
			return nil, errors.NewError(errors.ErrorTypeInternal, "failed to load env vars").WithCause(err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.NewError(errors.ErrorTypeBadRequest, "invalid configuration").WithCause(err)
	}

	return cfg, nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	d := &cfg.Deskgate

	if d.HTTP.Port <= 0 || d.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535, got %d", d.HTTP.Port)
	}
	if d.HTTP.MaxRequestSize <= 0 {
		return fmt.Errorf("http maxRequestSize must be positive")
	}

	if err := validateAuth(&d.Auth); err != nil {
		return err
	}

	if d.Sanitizer.MaxDepth <= 0 || d.Sanitizer.MaxNodes <= 0 {
		return fmt.Errorf("sanitizer maxDepth and maxNodes must be positive")
	}

	if err := validateRateLimit(&d.RateLimit); err != nil {
		return err
	}

	if d.Metrics.Enabled && !strings.HasPrefix(d.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /, got %q", d.Metrics.Path)
	}

	if d.Telemetry.Enabled {
		if d.Telemetry.Endpoint == "" {
			return fmt.Errorf("telemetry endpoint is required when telemetry is enabled")
		}
		if d.Telemetry.SampleRate < 0 || d.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry sampleRate must be between 0 and 1")
		}
	}

	return nil
}

func validateAuth(a *Auth) error {
	if a.Issuer == "" || a.Audience == "" {
		return fmt.Errorf("auth issuer and audience are required")
	}
	if a.TokenTTL <= 0 {
		return fmt.Errorf("auth tokenTTL must be positive")
	}
	if _, err := auth.ParseRole(a.AdminRole); err != nil {
		return fmt.Errorf("auth adminRole: %w", err)
	}
	return nil
}

func validateRateLimit(rl *RateLimit) error {
	switch rl.Storage {
	case "memory":
	case "redis":
		if rl.Redis == nil {
			return fmt.Errorf("rateLimit redis configuration is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown rateLimit storage: %q", rl.Storage)
	}

	for _, g := range rl.Groups.Named() {
		if g.Window <= 0 {
			return fmt.Errorf("rateLimit group %s: window must be positive", g.Name)
		}
		if g.Max <= 0 {
			return fmt.Errorf("rateLimit group %s: max must be positive", g.Name)
		}
		if g.MaxKeys < 0 {
			return fmt.Errorf("rateLimit group %s: maxKeys must not be negative", g.Name)
		}
		if len(g.Paths) == 0 {
			return fmt.Errorf("rateLimit group %s: at least one path is required", g.Name)
		}
	}
	return nil
}
