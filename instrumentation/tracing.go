package instrumentation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. Never record credential values (tokens, codes,
// secrets) in spans; only metadata about them.
const (
	AttrClientID  = "oauth.client_id"
	AttrUserID    = "oauth.user_id"
	AttrScope     = "oauth.scope"
	AttrGrantType = "oauth.grant_type"
	AttrTokenType = "oauth.token_type" //nolint:gosec // token type name, not a credential
	AttrExpiresIn = "oauth.expires_in"
	AttrRotated   = "oauth.token.rotated" //nolint:gosec // boolean flag
	AttrError     = "oauth.error"

	AttrModelOperation   = "model.operation"
	AttrStorageOperation = "storage.operation"
	AttrStorageBackend   = "storage.backend"

	AttrClientIP = "security.client_ip"

	AttrHTTPEndpoint   = "http.endpoint"
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddGrantAttributes adds token endpoint attributes to a span; empty values are skipped.
func AddGrantAttributes(span trace.Span, grantType, clientID, userID, scope string) {
	for key, v := range map[string]string{
		AttrGrantType: grantType,
		AttrClientID:  clientID,
		AttrUserID:    userID,
		AttrScope:     scope,
	} {
		if v != "" {
			SetSpanAttributes(span, attribute.String(key, v))
		}
	}
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, method, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}

// AddSecurityAttributes adds the client IP to a span. Callers must check
// ShouldLogClientIPs first.
func AddSecurityAttributes(span trace.Span, clientIP string) {
	if clientIP != "" {
		SetSpanAttributes(span, attribute.String(AttrClientIP, clientIP))
	}
}

// StartModelCall opens a span around a Model call. The returned func ends
// the span and records the call latency; pass it the call's error.
func (i *Instrumentation) StartModelCall(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := i.Tracer("server").Start(ctx, "model."+operation,
		trace.WithAttributes(attribute.String(AttrModelOperation, operation)))

	return ctx, func(err error) {
		result := ResultSuccess
		if err != nil {
			result = ResultError
			RecordError(span, err)
		} else {
			SetSpanSuccess(span)
		}
		span.End()
		i.metrics.RecordModelCall(ctx, operation, result, msSince(start))
	}
}

// StartStorageOperation opens a span around a store operation and records
// its latency when the returned func is called.
func (i *Instrumentation) StartStorageOperation(ctx context.Context, backend, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := i.Tracer("storage").Start(ctx, backend+"."+operation,
		trace.WithAttributes(
			attribute.String(AttrStorageBackend, backend),
			attribute.String(AttrStorageOperation, operation),
		))

	return ctx, func(err error) {
		result := ResultSuccess
		if err != nil {
			result = ResultError
			RecordError(span, err)
		}
		span.End()
		i.metrics.RecordStorageOperation(ctx, backend, operation, result, msSince(start))
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
