package server

import (
	"context"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/validation"
)

// RefreshTokenGrant rotates a refresh token (RFC 6749 section 6). The
// presented token is always revoked and a new pair issued.
type RefreshTokenGrant struct {
	grantBase
	tokens storage.RefreshTokenModel
}

// NewRefreshTokenGrant requires a model implementing RefreshTokenModel.
func NewRefreshTokenGrant(opts GrantOptions) (*RefreshTokenGrant, error) {
	opts.IssueRefreshToken = true
	base, err := newGrantBase(opts)
	if err != nil {
		return nil, err
	}
	return &RefreshTokenGrant{
		grantBase: base,
		tokens:    base.model.(storage.RefreshTokenModel),
	}, nil
}

// Type implements Grant.
func (g *RefreshTokenGrant) Type() string { return GrantTypeRefreshToken }

// Handle implements Grant.
func (g *RefreshTokenGrant) Handle(ctx context.Context, req *GrantRequest) (*Token, error) {
	presented := req.Body("refresh_token")
	if presented == "" {
		return nil, oautherr.InvalidRequest(`No "refresh_token" parameter`)
	}
	if !validation.VSChar(presented) {
		return nil, oautherr.InvalidRequest("Invalid parameter: `refresh_token`")
	}

	requested, err := g.extractScope(req)
	if err != nil {
		return nil, err
	}

	stored, err := call(ctx, g.inst, "getRefreshToken", func(ctx context.Context) (*storage.RefreshToken, error) {
		return g.tokens.GetRefreshToken(ctx, presented)
	})
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.ClientID != req.Client.ID {
		return nil, oautherr.InvalidGrant("Invalid refresh token")
	}

	if security.IsTokenExpired(stored.ExpiresAt, g.now()) {
		return nil, oautherr.InvalidGrant("Refresh token has expired")
	}

	user, ok := ownerOf(stored.User, stored.UserID)
	if !ok {
		return nil, oautherr.Serverf("refresh token for client %s has no user", stored.ClientID)
	}

	// A refresh may narrow the scope of the new access token but never
	// widen it. The new refresh token keeps the original scope.
	scope := stored.Scope
	if requested != "" {
		if !validation.ScopeCovers(stored.Scope, requested) {
			return nil, oautherr.InvalidScope("Invalid scope: Unable to add extra scopes")
		}
		scope = requested
	}

	expired, err := call(ctx, g.inst, "expireRefreshToken", func(ctx context.Context) (bool, error) {
		return g.tokens.ExpireRefreshToken(ctx, presented)
	})
	if err != nil {
		return nil, err
	}
	if !expired {
		return nil, oautherr.InvalidGrant("Invalid refresh token")
	}

	return g.issue(ctx, req.Client, user, scope, stored.Scope, true)
}
