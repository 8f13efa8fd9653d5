package security

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyPolicy controls how ClientIP trusts forwarding headers.
//
// Only enable Trust behind a reverse proxy you operate: X-Forwarded-For is
// client-controlled otherwise. TrustedHops is the number of proxies (counted
// from the right of X-Forwarded-For) that belong to you; zero means one.
type ProxyPolicy struct {
	Trust       bool
	TrustedHops int
}

// ClientIP returns the caller's address for rate limiting and audit logs.
func ClientIP(r *http.Request, policy ProxyPolicy) string {
	if policy.Trust {
		if ip := forwardedFor(r.Header.Get("X-Forwarded-For"), policy.TrustedHops); ip != "" {
			return ip
		}
		if ip := parseAddr(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return remoteHost(r.RemoteAddr)
}

// forwardedFor picks the entry just left of our trusted hops in a
// "client, proxy1, proxy2" list, clamped to the leftmost entry.
func forwardedFor(xff string, hops int) string {
	if xff == "" {
		return ""
	}
	if hops <= 0 {
		hops = 1
	}

	parts := strings.Split(xff, ",")
	idx := len(parts) - hops - 1
	if idx < 0 {
		idx = 0
	}
	return parseAddr(parts[idx])
}

func parseAddr(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.String()
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
