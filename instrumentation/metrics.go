package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrBackend   = attribute.Key("backend")
	attrKind      = attribute.Key("kind")
	attrOperation = attribute.Key("operation")
	attrResult    = attribute.Key("result")
)

// Model call and storage results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds all metric instruments for the engine. Record methods are
// safe to call on a nil *Metrics.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Token endpoint
	TokensIssued  metric.Int64Counter
	GrantsFailed  metric.Int64Counter
	TokensRevoked metric.Int64Counter

	// Protected resources
	BearerValidated metric.Int64Counter
	ScopeChecked    metric.Int64Counter

	// Security
	RateLimitExceeded metric.Int64Counter
	CodeReuseDetected metric.Int64Counter

	// Model and storage
	ModelCallDuration        metric.Float64Histogram
	StorageOperationTotal    metric.Int64Counter
	StorageOperationDuration metric.Float64Histogram
	StorageEntries           metric.Int64ObservableGauge
}

type counterSpec struct {
	dst  *metric.Int64Counter
	name string
	desc string
	unit string
}

type histogramSpec struct {
	dst  *metric.Float64Histogram
	name string
	desc string
}

func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}

	httpMeter := inst.Meter("http")
	serverMeter := inst.Meter("server")
	securityMeter := inst.Meter("security")
	storageMeter := inst.Meter("storage")

	counters := []struct {
		meter metric.Meter
		counterSpec
	}{
		{httpMeter, counterSpec{&m.HTTPRequestsTotal, "oauth.http.requests.total", "Total number of HTTP requests", "{request}"}},
		{serverMeter, counterSpec{&m.TokensIssued, "oauth.token.issued", "Number of access tokens issued", "{token}"}},
		{serverMeter, counterSpec{&m.GrantsFailed, "oauth.grant.failed", "Number of token requests rejected", "{request}"}},
		{serverMeter, counterSpec{&m.TokensRevoked, "oauth.token.revoked", "Number of tokens revoked", "{token}"}},
		{serverMeter, counterSpec{&m.BearerValidated, "oauth.bearer.validated", "Number of bearer token validations", "{validation}"}},
		{serverMeter, counterSpec{&m.ScopeChecked, "oauth.scope.checked", "Number of scope checks", "{check}"}},
		{securityMeter, counterSpec{&m.RateLimitExceeded, "oauth.rate_limit.exceeded", "Number of rate limit violations", "{violation}"}},
		{securityMeter, counterSpec{&m.CodeReuseDetected, "oauth.code.reuse_detected", "Number of authorization code replays", "{attempt}"}},
		{storageMeter, counterSpec{&m.StorageOperationTotal, "oauth.storage.operations.total", "Number of storage operations", "{operation}"}},
	}
	for _, c := range counters {
		var err error
		*c.dst, err = c.meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	histograms := []struct {
		meter metric.Meter
		histogramSpec
	}{
		{httpMeter, histogramSpec{&m.HTTPRequestDuration, "oauth.http.request.duration", "HTTP request duration in milliseconds"}},
		{serverMeter, histogramSpec{&m.ModelCallDuration, "oauth.model.call.duration", "Model call duration in milliseconds"}},
		{storageMeter, histogramSpec{&m.StorageOperationDuration, "oauth.storage.operation.duration", "Storage operation duration in milliseconds"}},
	}
	for _, h := range histograms {
		var err error
		*h.dst, err = h.meter.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s histogram: %w", h.name, err)
		}
	}

	var err error
	m.StorageEntries, err = storageMeter.Int64ObservableGauge(
		"oauth.storage.entries",
		metric.WithDescription("Number of entries held by the store"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage.entries gauge: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, endpoint string, statusCode int, durationMs float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("endpoint", endpoint),
		attribute.Int("status", statusCode),
	))
	m.HTTPRequestDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

// RecordTokenIssued records a successful grant
func (m *Metrics) RecordTokenIssued(ctx context.Context, grantType, clientID string, withRefresh bool) {
	if m == nil {
		return
	}
	m.TokensIssued.Add(ctx, 1, metric.WithAttributes(
		attribute.String("grant_type", grantType),
		attribute.String("client_id", clientID),
		attribute.Bool("refresh_token", withRefresh),
	))
}

// RecordGrantFailed records a rejected token request by OAuth error code
func (m *Metrics) RecordGrantFailed(ctx context.Context, grantType, errorCode string) {
	if m == nil {
		return
	}
	m.GrantsFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("grant_type", grantType),
		attribute.String("error", errorCode),
	))
}

// RecordTokenRevoked records a revocation
func (m *Metrics) RecordTokenRevoked(ctx context.Context, tokenType string) {
	if m == nil {
		return
	}
	m.TokensRevoked.Add(ctx, 1, metric.WithAttributes(
		attribute.String("token_type", tokenType),
	))
}

// RecordBearerValidation records the outcome of a bearer validation:
// "ok" or the OAuth error code.
func (m *Metrics) RecordBearerValidation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.BearerValidated.Add(ctx, 1, metric.WithAttributes(
		attrResult.String(outcome),
	))
}

// RecordScopeCheck records a scope check
func (m *Metrics) RecordScopeCheck(ctx context.Context, allowed bool) {
	if m == nil {
		return
	}
	m.ScopeChecked.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("allowed", allowed),
	))
}

// RecordRateLimitExceeded records a rate limit violation
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

// RecordCodeReuseDetected records a replayed authorization code
func (m *Metrics) RecordCodeReuseDetected(ctx context.Context) {
	if m == nil {
		return
	}
	m.CodeReuseDetected.Add(ctx, 1)
}

// RecordModelCall records the latency of one Model call
func (m *Metrics) RecordModelCall(ctx context.Context, operation, result string, durationMs float64) {
	if m == nil {
		return
	}
	m.ModelCallDuration.Record(ctx, durationMs, metric.WithAttributes(
		attrOperation.String(operation),
		attrResult.String(result),
	))
}

// RecordStorageOperation records a storage backend operation
func (m *Metrics) RecordStorageOperation(ctx context.Context, backend, operation, result string, durationMs float64) {
	if m == nil {
		return
	}
	m.StorageOperationTotal.Add(ctx, 1, metric.WithAttributes(
		attrBackend.String(backend),
		attrOperation.String(operation),
		attrResult.String(result),
	))
	m.StorageOperationDuration.Record(ctx, durationMs, metric.WithAttributes(
		attrBackend.String(backend),
		attrOperation.String(operation),
	))
}
