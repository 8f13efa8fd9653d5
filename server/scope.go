package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/storage"
)

// Scope headers set on protected-resource responses.
const (
	HeaderAcceptedScopes = "X-Accepted-OAuth-Scopes"
	HeaderGrantedScopes  = "X-OAuth-Scopes"
)

// AuthoriseScope checks that the authorised token carries the required
// scopes. It must run after Authenticate.
func (s *Server) AuthoriseScope(ctx context.Context, auth *Authorisation, required ...string) error {
	err := s.authoriseScope(ctx, auth, required)
	s.inst.Metrics().RecordScopeCheck(ctx, err == nil)
	if err != nil {
		if oautherr.Is(err, oautherr.KindInvalidScope) {
			s.Auditor.LogScopeDenied(auth.User.ID, auth.Token.ClientID, strings.Join(required, " "))
		}
		s.logFailure(ctx, "Scope check failed", err, "required_scope", strings.Join(required, " "))
		return err
	}
	return nil
}

func (s *Server) authoriseScope(ctx context.Context, auth *Authorisation, required []string) error {
	if auth == nil || auth.Token == nil {
		return oautherr.InvalidRequest("No access token found on the request")
	}

	authoriser, ok := s.model.(storage.ScopeAuthoriser)
	if !ok {
		return oautherr.InvalidArgument("scope checks require the model to implement ScopeAuthoriser")
	}

	scope := strings.Join(required, " ")
	allowed, err := call(ctx, s.inst, "authoriseScope", func(ctx context.Context) (bool, error) {
		return authoriser.AuthoriseScope(ctx, auth.Token, scope)
	})
	if err != nil {
		return err
	}
	if !allowed {
		return oautherr.InvalidScope("Invalid scope: Requested scope is invalid")
	}
	return nil
}

// SetScopeHeaders advertises the required and granted scopes on a
// protected-resource response.
func SetScopeHeaders(h http.Header, auth *Authorisation, required ...string) {
	h.Set(HeaderAcceptedScopes, strings.Join(required, " "))
	if auth != nil && auth.Token != nil {
		h.Set(HeaderGrantedScopes, auth.Token.Scope)
	}
}
