package oauth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giantswarm/oauth2-engine/security"
)

// Routes returns a router with the token, revocation and metadata endpoints
// registered at their default paths.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(security.RequestIDMiddleware)
	h.OAuthRoutes(r)
	h.WellKnownRoutes(r)
	return r
}

// OAuthRoutes registers the token and revocation endpoints on r. Every
// method is routed to the engine so that non-POST requests get an OAuth
// error body rather than a bare 405.
func (h *Handler) OAuthRoutes(r chi.Router) {
	r.HandleFunc(TokenPath, h.ServeToken)
	r.HandleFunc(RevocationPath, h.ServeRevocation)
}

// WellKnownRoutes registers RFC 8414 discovery on r.
func (h *Handler) WellKnownRoutes(r chi.Router) {
	r.Get(MetadataPath, h.ServeAuthorizationServerMetadata)
}
