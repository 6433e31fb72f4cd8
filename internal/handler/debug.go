package handler

import (
	"context"
	"log/slog"
	"net/http"

	"deskgate/internal/core"
	"deskgate/internal/middleware/auth"
	"deskgate/internal/middleware/ratelimit"
	"deskgate/pkg/errors"
)

// RateLimitDebug exposes limiter state to super admins
type RateLimitDebug struct {
	limiters map[string]*ratelimit.Limiter
	order    []string
	logger   *slog.Logger
}

// NewRateLimitDebug creates the debug handlers over the given limiters
func NewRateLimitDebug(logger *slog.Logger, limiters ...*ratelimit.Limiter) *RateLimitDebug {
	d := &RateLimitDebug{
		limiters: make(map[string]*ratelimit.Limiter, len(limiters)),
		logger:   logger.With("component", "ratelimit-debug"),
	}
	for _, l := range limiters {
		if l == nil {
			continue
		}
		if _, dup := d.limiters[l.Name()]; !dup {
			d.order = append(d.order, l.Name())
		}
		d.limiters[l.Name()] = l
	}
	return d
}

type statsResponse struct {
	Groups []ratelimit.GroupStats `json:"groups"`
}

// Stats lists every group with its configuration and occupancy
func (d *RateLimitDebug) Stats(ctx context.Context, req core.Request) (core.Response, error) {
	resp := statsResponse{Groups: make([]ratelimit.GroupStats, 0, len(d.order))}
	for _, name := range d.order {
		resp.Groups = append(resp.Groups, d.limiters[name].Stats())
	}
	return core.NewJSONResponse(http.StatusOK, resp)
}

type resetResponse struct {
	Group string `json:"group"`
	Key   string `json:"key"`
	Reset bool   `json:"reset"`
}

// Reset forgets the window of one key in one group
func (d *RateLimitDebug) Reset(ctx context.Context, req core.Request) (core.Response, error) {
	params := req.Payload().Params
	group, key := params["group"], params["key"]

	l, ok := d.limiters[group]
	if !ok {
		return nil, errors.NewError(errors.ErrorTypeNotFound, "Unknown rate limit group").
			WithDetail("group", group)
	}
	if key == "" {
		return nil, errors.NewError(errors.ErrorTypeBadRequest, "Key is required")
	}

	if err := l.Reset(ctx, key); err != nil {
		return nil, errors.Wrap(err, "reset rate limit key")
	}

	attrs := []any{"request_id", req.ID(), "group", group, "key", key}
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		attrs = append(attrs, "email", claims.Email)
	}
	d.logger.Info("Rate limit key reset", attrs...)

	return core.NewJSONResponse(http.StatusOK, resetResponse{Group: group, Key: key, Reset: true})
}
