package oauth

import (
	"encoding/json"
	"net/http"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/server"
)

// ErrorCodeRateLimitExceeded is returned with 429 when a caller exceeds its
// rate limit. It is not part of the engine's error taxonomy: rate limiting
// only happens in the HTTP adapter.
const ErrorCodeRateLimitExceeded = "rate_limit_exceeded"

// ErrorHandler handles protected-resource errors when passthrough is
// enabled. err is usually an *oautherr.Error.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON error body written by every endpoint.
type ErrorResponse = oautherr.Body

// writeError writes an error body that is not produced by the engine.
func (h *Handler) writeError(w http.ResponseWriter, code, description string, status int) {
	security.SetSecurityHeaders(w.Header(), h.server.Config.Issuer)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:             status,
		Error:            code,
		ErrorDescription: description,
	})
}

// writeEngineError renders err the way the engine does.
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) int {
	resp := h.server.Engine.RenderError(err)
	h.writeResponse(w, r, resp)
	return resp.Status
}

// writeResponse writes an engine response with the adapter's headers.
func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, resp *server.Response) {
	security.SetSecurityHeaders(w.Header(), h.server.Config.Issuer)
	if err := resp.Write(w); err != nil {
		security.Logger(r.Context(), h.logger).Warn("Failed to write response", "error", err)
	}
}
