package ratelimit

import (
	"context"
	"net/http"
	"strings"

	"deskgate/internal/core"
	"deskgate/pkg/errors"
)

// Middleware creates rate limiting middleware for a single limiter. Only
// requests whose path matches one of patterns are counted; no patterns
// means every request is counted.
func Middleware(l *Limiter, patterns ...string) core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(ctx context.Context, req core.Request) (core.Response, error) {
			if !matchAny(req.Path(), patterns) {
				return next(ctx, req)
			}

			key := l.keyFunc(req)
			d, err := l.Allow(ctx, key)
			if err != nil {
				l.logger.Warn("rate limit check failed, allowing request",
					"group", l.name,
					"key", key,
					"path", req.Path(),
					"error", err,
				)
			}

			if !d.Allowed {
				l.logger.Warn("rate limit exceeded",
					"group", l.name,
					"key", key,
					"path", req.Path(),
					"method", req.Method(),
					"request_id", req.ID(),
				)
				return nil, l.deny(d)
			}

			resp, err := next(ctx, req)
			headers := d.Headers(l.now())
			switch {
			case err != nil:
				return nil, withErrorHeaders(err, headers)
			case resp == nil:
				return core.WithHeaders(core.NewResponse(http.StatusNoContent, nil), headers), nil
			}
			return core.WithHeaders(resp, missingHeaders(resp, headers)), nil
		}
	}
}

// withErrorHeaders attaches the limiter headers to a downstream error.
// Headers set by an inner limiter are kept.
func withErrorHeaders(err error, h map[string]string) *errors.Error {
	e := errors.From(err)
	for k, v := range h {
		if _, ok := e.Headers[k]; ok {
			continue
		}
		e.WithHeader(k, v)
	}
	return e
}

// Rule binds a limiter to the paths it guards
type Rule struct {
	Limiter  *Limiter
	Patterns []string
}

// PerRoute chains one middleware per rule, in order. When several limiters
// apply to a request, the innermost one's headers are reported.
func PerRoute(rules []Rule) core.Middleware {
	return func(next core.Handler) core.Handler {
		for i := len(rules) - 1; i >= 0; i-- {
			next = Middleware(rules[i].Limiter, rules[i].Patterns...)(next)
		}
		return next
	}
}

// missingHeaders drops headers the response already carries
func missingHeaders(resp core.Response, h map[string]string) map[string]string {
	existing := resp.Headers()
	for k := range h {
		if _, ok := existing[k]; ok {
			delete(h, k)
		}
	}
	return h
}

func matchAny(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if matchPath(path, p) {
			return true
		}
	}
	return false
}

// matchPath checks if a request path matches a pattern
func matchPath(requestPath, pattern string) bool {
	// Exact match
	if requestPath == pattern {
		return true
	}

	// Wildcard match
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(requestPath, prefix)
	}

	return false
}
