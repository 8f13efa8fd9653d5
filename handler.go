package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/server"
)

// Endpoint labels used in metrics and spans.
const (
	endpointToken    = "token"
	endpointRevoke   = "revoke"
	endpointResource = "resource"
	endpointMetadata = "metadata"
)

// retryAfterSeconds is sent with 429 responses.
const retryAfterSeconds = "60"

// Handler is a thin HTTP adapter for the OAuth Server.
// It handles HTTP requests and delegates to the engine for business logic.
type Handler struct {
	server *Server
	logger *slog.Logger
	tracer trace.Tracer
}

// NewHandler creates a new HTTP handler
func NewHandler(server *Server, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		server: server,
		logger: logger,
		tracer: server.Instrumentation.Tracer("http"),
	}
}

// ServeToken handles token requests (RFC 6749 section 3.2).
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	h.serveEndpoint(w, r, endpointToken, h.server.Engine.HandleToken)
}

// ServeRevocation handles token revocation requests (RFC 7009).
func (h *Handler) ServeRevocation(w http.ResponseWriter, r *http.Request) {
	h.serveEndpoint(w, r, endpointRevoke, h.server.Engine.HandleRevoke)
}

type engineHandler func(ctx context.Context, req *server.Request) *server.Response

func (h *Handler) serveEndpoint(w http.ResponseWriter, r *http.Request, endpoint string, handle engineHandler) {
	startTime := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "oauth.http."+endpoint)
	defer span.End()
	r = r.WithContext(ctx)

	clientIP := security.ClientIP(r, h.server.Config.Security.Proxy)
	if h.server.Instrumentation.ShouldLogClientIPs() {
		instrumentation.AddSecurityAttributes(span, clientIP)
	}

	status := h.handleEndpoint(w, r, endpoint, clientIP, handle)

	instrumentation.AddHTTPAttributes(span, r.Method, endpoint, status)
	h.recordHTTPMetrics(ctx, endpoint, r.Method, status, startTime)
}

func (h *Handler) handleEndpoint(w http.ResponseWriter, r *http.Request, endpoint, clientIP string, handle engineHandler) int {
	req, err := server.FromHTTP(r)
	if err != nil {
		return h.writeEngineError(w, r, malformedRequest(err))
	}

	key, clientID := tokenRateLimitKey(req, clientIP)
	if h.checkRateLimit(w, r, h.server.TokenRateLimiter, key, clientIP, clientID, endpoint) {
		return http.StatusTooManyRequests
	}

	resp := handle(r.Context(), req)
	h.writeResponse(w, r, resp)
	return resp.Status
}

// tokenRateLimitKey keys token endpoint limits by client, falling back to
// the caller's IP when no client_id was sent.
func tokenRateLimitKey(req *server.Request, clientIP string) (key, clientID string) {
	if id, _, ok := req.BasicAuth(); ok && id != "" {
		return "client:" + id, id
	}
	if id := req.Body("client_id"); id != "" {
		return "client:" + id, id
	}
	return "ip:" + clientIP, ""
}

// checkRateLimit writes a 429 and returns true when key is over its limit.
func (h *Handler) checkRateLimit(w http.ResponseWriter, r *http.Request, limiter *security.RateLimiter, key, clientIP, clientID, endpoint string) bool {
	if limiter == nil || limiter.Allow(key) {
		return false
	}

	security.Logger(r.Context(), h.logger).Warn("Rate limit exceeded",
		"endpoint", endpoint, "ip", clientIP, "client_id", clientID)
	h.server.Instrumentation.Metrics().RecordRateLimitExceeded(r.Context(), endpoint)
	h.server.Auditor.LogRateLimitExceeded(clientIP, clientID)

	w.Header().Set("Retry-After", retryAfterSeconds)
	h.writeError(w, ErrorCodeRateLimitExceeded, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	return true
}

// Authorise is middleware that validates the bearer token of a protected
// resource request and stores the Authorisation in the request context.
func (h *Handler) Authorise(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ctx, span := h.tracer.Start(r.Context(), "oauth.http.authorise")
		defer span.End()
		r = r.WithContext(ctx)

		clientIP := security.ClientIP(r, h.server.Config.Security.Proxy)
		if h.checkRateLimit(w, r, h.server.ResourceRateLimiter, "ip:"+clientIP, clientIP, "", endpointResource) {
			h.recordHTTPMetrics(ctx, endpointResource, r.Method, http.StatusTooManyRequests, startTime)
			return
		}

		auth, err := h.authenticate(r)
		if err != nil {
			instrumentation.RecordError(span, err)
			if oautherr.Is(err, oautherr.KindInvalidToken) {
				h.server.Auditor.LogAuthFailure("", "", clientIP, oautherr.From(err).Description)
			}
			status := h.handleResourceError(w, r, err)
			h.recordHTTPMetrics(ctx, endpointResource, r.Method, status, startTime)
			return
		}

		instrumentation.SetSpanSuccess(span)
		next.ServeHTTP(w, r.WithContext(ContextWithAuthorisation(ctx, auth)))
	})
}

func (h *Handler) authenticate(r *http.Request) (*server.Authorisation, error) {
	req, err := server.FromHTTP(r)
	if err != nil {
		return nil, malformedRequest(err)
	}
	return h.server.Engine.Authenticate(r.Context(), req)
}

// RequireScope returns middleware that rejects requests whose token was not
// granted every one of scopes. It must be chained after Authorise.
func (h *Handler) RequireScope(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, _ := AuthorisationFromContext(r.Context())
			if err := h.server.Engine.AuthoriseScope(r.Context(), auth, scopes...); err != nil {
				h.handleResourceError(w, r, err)
				return
			}

			server.SetScopeHeaders(w.Header(), auth, scopes...)
			next.ServeHTTP(w, r)
		})
	}
}

// handleResourceError renders err, or hands it to the configured
// ErrorHandler when passthrough is enabled. It returns the status written
// by the renderer, or 0 when the error was passed through.
func (h *Handler) handleResourceError(w http.ResponseWriter, r *http.Request, err error) int {
	if h.server.Engine.Config.PassthroughErrors && h.server.Config.ErrorHandler != nil {
		h.server.Config.ErrorHandler(w, r, err)
		return 0
	}
	return h.writeEngineError(w, r, err)
}

// ServeAuthorizationServerMetadata serves RFC 8414 metadata.
func (h *Handler) ServeAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	startTime := time.Now()
	security.SetSecurityHeaders(w.Header(), h.server.Config.Issuer)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.server.Metadata())
	h.recordHTTPMetrics(r.Context(), endpointMetadata, r.Method, http.StatusOK, startTime)
}

func (h *Handler) recordHTTPMetrics(ctx context.Context, endpoint, method string, status int, startTime time.Time) {
	duration := time.Since(startTime).Seconds() * 1000 // milliseconds
	h.server.Instrumentation.Metrics().RecordHTTPRequest(ctx, method, endpoint, status, duration)
}

func malformedRequest(err error) *oautherr.Error {
	return &oautherr.Error{
		Kind:        oautherr.KindInvalidRequest,
		Description: "Failed to parse request",
		Cause:       fmt.Errorf("reading request: %w", err),
	}
}

type contextKey string

const authorisationKey contextKey = "authorisation"

// AuthorisationFromContext retrieves the Authorisation stored by Authorise.
func AuthorisationFromContext(ctx context.Context) (*server.Authorisation, bool) {
	auth, ok := ctx.Value(authorisationKey).(*server.Authorisation)
	return auth, ok
}

// ContextWithAuthorisation creates a context with the given Authorisation.
// This is useful for testing handlers that run behind Authorise.
func ContextWithAuthorisation(ctx context.Context, auth *server.Authorisation) context.Context {
	return context.WithValue(ctx, authorisationKey, auth)
}
