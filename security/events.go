package security

// Event type constants for security audit logging.
const (
	// Token lifecycle events

	// EventTokenIssued is logged when a grant issues a new access token
	EventTokenIssued = "token_issued"

	// EventTokenRefreshed is logged when a refresh token is exchanged for a new token pair
	EventTokenRefreshed = "token_refreshed"

	// EventTokenRevoked is logged when a token is revoked through the revocation endpoint
	EventTokenRevoked = "token_revoked"

	// EventAuthorizationCodeConsumed is logged when an authorization code is redeemed
	EventAuthorizationCodeConsumed = "authorization_code_consumed"

	// Security violation events

	// EventAuthFailure is logged when client or user authentication fails
	EventAuthFailure = "auth_failure"

	// EventGrantRejected is logged when a token request fails for any non-authentication reason
	EventGrantRejected = "grant_rejected"

	// EventAuthorizationCodeReuseDetected is logged when an already-consumed code is presented again
	EventAuthorizationCodeReuseDetected = "authorization_code_reuse_detected"

	// EventRefreshTokenReuseDetected is logged when an already-rotated refresh token is presented again
	EventRefreshTokenReuseDetected = "refresh_token_reuse_detected"

	// EventInvalidRedirect is logged when the redirect_uri does not match the one bound to a code
	EventInvalidRedirect = "invalid_redirect"

	// EventScopeEscalationAttempt is logged when a refresh requests scope beyond the stored grant
	EventScopeEscalationAttempt = "scope_escalation_attempt"

	// EventScopeDenied is logged when a bearer token lacks the scope a resource requires
	EventScopeDenied = "scope_denied"

	// EventRateLimitExceeded is logged when a rate limit is exceeded
	EventRateLimitExceeded = "rate_limit_exceeded"
)
