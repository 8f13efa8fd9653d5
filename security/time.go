package security

import "time"

// IsTokenExpired reports whether an access or refresh token has expired.
// A nil expiry never expires.
func IsTokenExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return expiresAt.Before(now)
}

// IsCodeExpired reports whether an authorization code has expired. Unlike
// tokens, a code must carry an expiry strictly in the future: a nil expiry
// counts as expired.
func IsCodeExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return !expiresAt.After(now)
}

// ExpiresAt returns now + lifetime seconds, or nil when lifetime is not positive.
func ExpiresAt(now time.Time, lifetimeSeconds int64) *time.Time {
	if lifetimeSeconds <= 0 {
		return nil
	}
	t := now.Add(time.Duration(lifetimeSeconds) * time.Second)
	return &t
}
