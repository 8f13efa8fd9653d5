// Package security holds the security primitives shared by the OAuth engine.
//
// # Tokens and secrets
//
// GenerateToken produces the opaque 40-hex-character values used for access
// tokens, refresh tokens and authorization codes. HashSecret and
// CompareSecret hash client secrets and user passwords with bcrypt so that
// storage backends never persist them in the clear.
//
// # Expiry
//
// Access and refresh tokens with a nil expiry never expire. Authorization
// codes are stricter: IsCodeExpired treats a nil expiry as expired.
//
// # Rate limiting
//
// RateLimiter is a keyed token bucket with LRU eviction, so a flood of
// distinct keys cannot grow memory without bound:
//
//	limiter := security.NewRateLimiter(security.RateLimitConfig{
//	    RequestsPerSecond: 10,
//	    Burst:             20,
//	}, logger)
//	defer limiter.Stop()
//
//	if !limiter.Allow(clientID) {
//	    return http.StatusTooManyRequests
//	}
//
// Stats reports MemoryPressure; sustained values above 80% or rapidly
// increasing TotalEvictions usually mean MaxEntries is too low or the
// endpoint is under a distributed attack.
//
// # Auditing
//
// Auditor writes security_audit records through slog. User IDs are hashed
// before they reach the log.
package security
