package server

import (
	"context"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/validation"
)

// AuthorizationCodeGrant exchanges an authorization code for tokens
// (RFC 6749 section 4.1.3). Codes are single-use.
type AuthorizationCodeGrant struct {
	grantBase
	codes storage.AuthCodeModel
}

// NewAuthorizationCodeGrant requires a model implementing AuthCodeModel.
func NewAuthorizationCodeGrant(opts GrantOptions) (*AuthorizationCodeGrant, error) {
	base, err := newGrantBase(opts)
	if err != nil {
		return nil, err
	}
	codes, ok := opts.Model.(storage.AuthCodeModel)
	if !ok {
		return nil, oautherr.InvalidArgument("authorization_code requires the model to implement AuthCodeModel")
	}
	return &AuthorizationCodeGrant{grantBase: base, codes: codes}, nil
}

// Type implements Grant.
func (g *AuthorizationCodeGrant) Type() string { return GrantTypeAuthorizationCode }

// Handle implements Grant.
func (g *AuthorizationCodeGrant) Handle(ctx context.Context, req *GrantRequest) (*Token, error) {
	code := req.Body("code")
	if code == "" {
		return nil, oautherr.InvalidRequest(`No "code" parameter`)
	}
	if !validation.VSChar(code) {
		return nil, oautherr.InvalidRequest("Invalid parameter: `code`")
	}

	authCode, err := call(ctx, g.inst, "getAuthCode", func(ctx context.Context) (*storage.AuthorizationCode, error) {
		return g.codes.GetAuthCode(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	if authCode == nil || authCode.ClientID != req.Client.ID {
		return nil, oautherr.InvalidGrant("Invalid code")
	}

	if security.IsCodeExpired(authCode.ExpiresAt, g.now()) {
		return nil, oautherr.InvalidGrant("Code has expired")
	}

	if err := validateRedirectURI(req, authCode); err != nil {
		return nil, err
	}

	user, ok := ownerOf(authCode.User, authCode.UserID)
	if !ok {
		return nil, oautherr.Serverf("authorization code for client %s has no user", authCode.ClientID)
	}

	scope, err := g.validateScope(ctx, user, req.Client, authCode.Scope)
	if err != nil {
		return nil, err
	}

	// Consume the code before issuing so that concurrent exchanges of the
	// same code cannot both obtain tokens.
	revoked, err := call(ctx, g.inst, "revokeAuthCode", func(ctx context.Context) (bool, error) {
		return g.codes.RevokeAuthCode(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	if !revoked {
		g.inst.Metrics().RecordCodeReuseDetected(ctx)
		return nil, oautherr.InvalidGrant("Invalid code")
	}

	return g.issue(ctx, req.Client, user, scope, scope, g.issueRefreshToken)
}

// validateRedirectURI enforces the binding of RFC 6749 section 4.1.3: when
// the code was issued for a redirect_uri, the same value must be presented.
func validateRedirectURI(req *GrantRequest, code *storage.AuthorizationCode) error {
	if code.RedirectURI == "" {
		return nil
	}

	redirectURI := req.Body("redirect_uri")
	if redirectURI == "" {
		redirectURI = req.Query("redirect_uri")
	}
	if !validation.URI(redirectURI) {
		return oautherr.InvalidRequest("Invalid request: `redirect_uri` is not a valid URI")
	}
	if redirectURI != code.RedirectURI {
		return oautherr.InvalidRequest("Invalid request: `redirect_uri` is invalid")
	}
	return nil
}
