// Package clientip derives a normalized client identity from request metadata.
package clientip

import (
	"net"
	"strings"
	"unicode/utf8"
)

// MaxKeyLength bounds the length of a derived key
const MaxKeyLength = 120

// Unknown is returned when no usable address is available
const Unknown = "unknown"

const mappedIPv4Prefix = "::ffff:"

// FromHeaders returns the first address of X-Forwarded-For, falling back to
// remoteAddr. The result has any port and IPv6-mapped IPv4 prefix removed,
// is trimmed and truncated to MaxKeyLength, and is Unknown when empty.
func FromHeaders(headers map[string][]string, remoteAddr string) string {
	if forwarded := firstHeader(headers, "X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if key := Normalize(first); key != Unknown {
			return key
		}
	}
	return Normalize(remoteAddr)
}

// Normalize cleans a single address value.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.TrimPrefix(addr, mappedIPv4Prefix)
	addr = strings.TrimSpace(addr)
	if len(addr) > MaxKeyLength {
		cut := MaxKeyLength
		for cut > 0 && !utf8.RuneStart(addr[cut]) {
			cut--
		}
		addr = addr[:cut]
	}
	if addr == "" {
		return Unknown
	}
	return addr
}

// firstHeader is a case-insensitive lookup over a raw header map
func firstHeader(headers map[string][]string, name string) string {
	if values, ok := headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	for k, values := range headers {
		if strings.EqualFold(k, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
