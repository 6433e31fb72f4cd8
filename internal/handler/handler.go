// Package handler holds the route handlers that sit behind the defense chain.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"deskgate/internal/core"
	"deskgate/internal/middleware/auth"
	"deskgate/pkg/errors"
)

// Health reports liveness
func Health() core.Handler {
	return func(ctx context.Context, req core.Request) (core.Response, error) {
		return core.NewJSONResponse(http.StatusOK, map[string]string{"status": "ok"})
	}
}

type sessionResponse struct {
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session echoes the identity the gate attached to the request
func Session() core.Handler {
	return func(ctx context.Context, req core.Request) (core.Response, error) {
		claims, ok := auth.ClaimsFromContext(ctx)
		if !ok {
			// only reachable when mounted without a gate
			return nil, errors.NewError(errors.ErrorTypeUnauthorized, auth.MsgMissingToken)
		}
		return core.NewJSONResponse(http.StatusOK, sessionResponse{
			Email:     claims.Email,
			Role:      claims.Role,
			ExpiresAt: claims.ExpiresAt.UTC(),
		})
	}
}

type ingestResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
}

// Ingest acknowledges an event payload that has passed sanitization
func Ingest(logger *slog.Logger) core.Handler {
	logger = logger.With("component", "ingest")
	return func(ctx context.Context, req core.Request) (core.Response, error) {
		body, ok := req.Payload().Body.(map[string]any)
		if !ok {
			return nil, errors.NewError(errors.ErrorTypeBadRequest, "Event payload must be a JSON object")
		}

		logger.Debug("Event accepted",
			"request_id", req.ID(),
			"fields", len(body),
		)
		return core.NewJSONResponse(http.StatusAccepted, ingestResponse{
			Status:    "accepted",
			RequestID: req.ID(),
		})
	}
}
