package server

import (
	"context"
	"net/http"
	"regexp"

	"go.opentelemetry.io/otel/attribute"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/storage"
)

// clientIDPattern is the accepted client_id grammar (case-insensitive).
var clientIDPattern = regexp.MustCompile(`(?i)^[a-z0-9-_]{3,40}$`)

// clientCredentials are the credentials a client presented.
type clientCredentials struct {
	id        string
	secret    string
	viaBasic  bool
	hasSecret bool
}

// extractClientCredentials reads HTTP Basic credentials, falling back to
// the client_id and client_secret body fields.
func extractClientCredentials(req *Request) clientCredentials {
	if id, secret, ok := req.BasicAuth(); ok {
		return clientCredentials{id: id, secret: secret, viaBasic: true, hasSecret: secret != ""}
	}
	secret := req.Body("client_secret")
	return clientCredentials{
		id:        req.Body("client_id"),
		secret:    secret,
		hasSecret: secret != "",
	}
}

// invalidClient builds an invalid_client error. It is a 401 when the
// client tried HTTP Basic authentication (RFC 6749 section 5.2).
func invalidClient(creds clientCredentials, desc string) *oautherr.Error {
	err := oautherr.InvalidClient(desc)
	if creds.viaBasic {
		return err.WithStatus(http.StatusUnauthorized)
	}
	return err
}

// authenticateClient checks the presented credentials with the model.
func (s *Server) authenticateClient(ctx context.Context, creds clientCredentials) (*storage.Client, error) {
	if !clientIDPattern.MatchString(creds.id) {
		return nil, invalidClient(creds, "Invalid or missing client_id parameter")
	}

	client, err := call(ctx, s.inst, "getClient", func(ctx context.Context) (*storage.Client, error) {
		return s.model.GetClient(ctx, creds.id, creds.secret)
	})
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, invalidClient(creds, "Client credentials are invalid")
	}
	return client, nil
}

// requireFormPost enforces the token endpoint transport rule.
func requireFormPost(req *Request) error {
	if req.Method() != http.MethodPost || !req.IsForm() {
		return oautherr.InvalidRequest("Method must be POST with application/x-www-form-urlencoded encoding")
	}
	return nil
}

// Token handles a token endpoint request. On success the response holds a
// *TokenResponse; errors are returned unmodified for the caller to render
// with RenderError.
func (s *Server) Token(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := s.inst.Tracer("server").Start(ctx, "oauth.token")
	defer span.End()

	grantType := req.Body("grant_type")
	token, err := s.grant(ctx, req, grantType)
	if err != nil {
		instrumentation.RecordError(span, err)
		oe := oautherr.From(err)
		s.inst.Metrics().RecordGrantFailed(ctx, grantType, oe.Code())
		s.Auditor.LogGrantRejected(extractClientCredentials(req).id, grantType, oe.Code(), oe.Description)
		s.logFailure(ctx, "Token request failed", err, "grant_type", grantType)
		return nil, err
	}

	instrumentation.AddGrantAttributes(span, grantType, token.Client.ID, token.User.ID, token.Scope)
	instrumentation.SetSpanSuccess(span)

	withRefresh := token.RefreshToken != ""
	s.inst.Metrics().RecordTokenIssued(ctx, grantType, token.Client.ID, withRefresh)
	switch grantType {
	case GrantTypeAuthorizationCode:
		s.Auditor.LogCodeConsumed(token.User.ID, token.Client.ID)
	case GrantTypeRefreshToken:
		s.Auditor.LogTokenRefreshed(token.User.ID, token.Client.ID)
		instrumentation.SetSpanAttributes(span, attribute.Bool(instrumentation.AttrRotated, true))
	}
	s.Auditor.LogTokenIssued(token.User.ID, token.Client.ID, grantType, token.Scope)

	body := &TokenResponse{
		AccessToken:  token.AccessToken,
		TokenType:    TokenTypeBearer,
		RefreshToken: token.RefreshToken,
		Scope:        token.Scope,
	}
	if token.AccessTokenExpiresAt != nil {
		body.ExpiresIn = s.Config.AccessTokenLifetime
	}
	return newTokenResponse(body), nil
}

// HandleToken is Token with errors already rendered.
func (s *Server) HandleToken(ctx context.Context, req *Request) *Response {
	resp, err := s.Token(ctx, req)
	if err != nil {
		return s.RenderError(err)
	}
	return resp
}

// grant runs the token endpoint checks in their observable order:
// transport, grant_type, client authentication, grant allow-lists, then
// the grant itself.
func (s *Server) grant(ctx context.Context, req *Request, grantType string) (*Token, error) {
	if err := requireFormPost(req); err != nil {
		return nil, err
	}

	if grantType == "" {
		return nil, oautherr.InvalidRequest("Invalid or missing grant_type parameter")
	}
	g, ok := s.grants[grantType]
	if !ok {
		return nil, oautherr.UnsupportedGrantType("Unsupported grant type: `grant_type` is invalid")
	}

	creds := extractClientCredentials(req)
	client, err := s.authenticateClient(ctx, creds)
	if err != nil {
		return nil, err
	}

	allowed, err := call(ctx, s.inst, "grantTypeAllowed", func(ctx context.Context) (bool, error) {
		return s.model.GrantTypeAllowed(ctx, client.ID, grantType)
	})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, oautherr.UnauthorizedClient("The grant type is unauthorised for this client_id")
	}

	token, err := g.Handle(ctx, &GrantRequest{
		Request:         req,
		Client:          client,
		SecretPresented: creds.hasSecret,
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}
