package factory

import (
	"context"
	"fmt"
	"log/slog"

	"deskgate/internal/config"
	"deskgate/internal/telemetry"
)

// CreateTelemetry creates the tracer provider. Disabled telemetry still
// returns a usable no-op instance.
func CreateTelemetry(ctx context.Context, cfg *config.Telemetry, version string, logger *slog.Logger) (*telemetry.Telemetry, error) {
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:     cfg.Enabled,
		ServiceName: cfg.ServiceName,
		Version:     version,
		Endpoint:    cfg.Endpoint,
		Insecure:    cfg.Insecure,
		SampleRate:  cfg.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("creating telemetry: %w", err)
	}

	if cfg.Enabled {
		logger.Info("Tracing enabled",
			"service", cfg.ServiceName,
			"endpoint", cfg.Endpoint,
			"sampleRate", cfg.SampleRate,
		)
	}
	return tel, nil
}
