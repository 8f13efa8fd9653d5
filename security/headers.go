package security

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SetSecurityHeaders sets hardening headers on responses from the token and
// revocation endpoints. HSTS is only sent when issuerURL is https.
func SetSecurityHeaders(h http.Header, issuerURL string) {
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	h.Set("Referrer-Policy", "no-referrer")

	if parsed, err := url.Parse(issuerURL); err == nil && parsed.Scheme == "https" {
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	SetNoStore(h)
}

// SetNoStore marks a response carrying credentials as uncacheable.
func SetNoStore(h http.Header) {
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
}

// BearerChallenge builds a WWW-Authenticate value for a protected resource.
// Empty errorCode yields the bare challenge sent when no credentials were
// presented.
func BearerChallenge(realm, errorCode, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bearer realm=%q", realm)
	if errorCode != "" {
		fmt.Fprintf(&b, ", error=%q", errorCode)
	}
	if description != "" {
		fmt.Fprintf(&b, ", error_description=%q", description)
	}
	return b.String()
}
