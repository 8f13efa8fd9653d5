package oauth

import (
	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/server"
)

// Config holds the HTTP adapter configuration.
// Structured using composition; the engine settings live in Server.
type Config struct {
	// Issuer is the public base URL of this authorization server.
	// An https issuer enables HSTS on endpoint responses.
	Issuer string

	// Server configures grants, token lifetimes and error rendering.
	Server server.Config

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Security settings
	Security SecurityConfig

	// Instrumentation configures OpenTelemetry metrics and tracing.
	Instrumentation instrumentation.Config

	// ErrorHandler receives protected-resource errors when
	// Server.PassthroughErrors is set. Token and revocation endpoint
	// errors are always rendered.
	ErrorHandler ErrorHandler
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Token limits the token and revocation endpoints, keyed by client_id
	// or, for unidentified callers, by IP. A zero rate disables it.
	Token security.RateLimitConfig

	// Resource limits protected-resource requests per IP. A zero rate
	// disables it.
	Resource security.RateLimitConfig
}

// SecurityConfig holds security settings
type SecurityConfig struct {
	// Proxy controls whether X-Forwarded-For and X-Real-IP are trusted.
	// WARNING: only enable behind a reverse proxy you operate.
	Proxy security.ProxyPolicy

	// EnableAuditLogging enables the security audit trail.
	// User IDs are hashed before they are logged.
	EnableAuditLogging bool
}

func rateLimitEnabled(cfg security.RateLimitConfig) bool {
	return cfg.RequestsPerSecond > 0 && cfg.Burst > 0
}
