package middleware

import (
	"net/netip"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ClientIPResolver determines the address of the client behind a request.
type ClientIPResolver struct {
	// TrustProxyHeaders honours X-Forwarded-For and X-Real-IP. Enable it only behind a
	// proxy that overwrites them, otherwise clients can pick their own identity.
	TrustProxyHeaders bool
}

// Resolve returns the client address, or the zero netip.Addr when none can be determined.
func (r ClientIPResolver) Resolve(ctx huma.Context) netip.Addr {
	if r.TrustProxyHeaders {
		// Check X-Forwarded-For header (may contain multiple IPs)
		if xff := ctx.Header("X-Forwarded-For"); xff != "" {
			// Take the first IP (original client)
			first, _, _ := strings.Cut(xff, ",")
			if addr, ok := parseAddr(first); ok {
				return addr
			}
		}

		if addr, ok := parseAddr(ctx.Header("X-Real-IP")); ok {
			return addr
		}
	}

	addr, _ := parseAddr(ctx.RemoteAddr())

	return addr
}

// parseAddr accepts a bare address or host:port and unmaps IPv4-in-IPv6 addresses so
// both forms of one client share a key.
func parseAddr(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}

	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		return addrPort.Addr().Unmap(), true
	}

	addr, err := netip.ParseAddr(strings.Trim(raw, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}

	return addr.Unmap(), true
}
