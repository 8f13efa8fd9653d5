// Package instrumentation provides OpenTelemetry metrics and tracing for the
// OAuth engine.
//
// Instrumentation is disabled by default and then costs nothing: no-op
// providers are installed. Enable it and pick an exporter:
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		Enabled:         true,
//		ServiceName:     "my-auth-server",
//		MetricsExporter: instrumentation.MetricsExporterPrometheus,
//	})
//	if err != nil {
//		return err
//	}
//	defer inst.Shutdown(context.Background())
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Metrics
//
// HTTP:
//   - oauth.http.requests.total{method, endpoint, status}
//   - oauth.http.request.duration{endpoint}
//
// Token endpoint:
//   - oauth.token.issued{grant_type, client_id, refresh_token}
//   - oauth.grant.failed{grant_type, error}
//   - oauth.token.revoked{token_type}
//
// Protected resources:
//   - oauth.bearer.validated{result}
//   - oauth.scope.checked{allowed}
//
// Security:
//   - oauth.rate_limit.exceeded{endpoint}
//   - oauth.code.reuse_detected
//
// Model and storage:
//   - oauth.model.call.duration{operation, result}
//   - oauth.storage.operations.total{backend, operation, result}
//   - oauth.storage.operation.duration{backend, operation}
//   - oauth.storage.entries{backend, kind}
//
// # Traces
//
// Every Model call runs inside a "model.<operation>" span and every store
// operation inside a "<backend>.<operation>" span. Set Config.SpanExporter to
// collect them.
package instrumentation
