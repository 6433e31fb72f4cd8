package ratelimit

import (
	"deskgate/internal/core"
	"deskgate/pkg/clientip"
)

// KeyFunc extracts rate limit key from request
type KeyFunc func(core.Request) string

// ByClientIP rate limits by the client address, preferring the first
// X-Forwarded-For entry over the connection address
func ByClientIP(req core.Request) string {
	return clientip.FromHeaders(req.Headers(), req.RemoteAddr())
}

// ByClientIPAndPath rate limits by client address and path combination
func ByClientIPAndPath(req core.Request) string {
	return ByClientIP(req) + ":" + req.Path()
}
