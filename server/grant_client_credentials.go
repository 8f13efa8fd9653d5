package server

import (
	"context"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/storage"
)

// ClientCredentialsGrant issues tokens to a confidential client acting on
// its own behalf (RFC 6749 section 4.4).
type ClientCredentialsGrant struct {
	grantBase
}

// NewClientCredentialsGrant builds the strategy. A refresh token is only
// issued when AlwaysIssueNewRefreshToken is set.
func NewClientCredentialsGrant(opts GrantOptions) (*ClientCredentialsGrant, error) {
	base, err := newGrantBase(opts)
	if err != nil {
		return nil, err
	}
	return &ClientCredentialsGrant{grantBase: base}, nil
}

// Type implements Grant.
func (g *ClientCredentialsGrant) Type() string { return GrantTypeClientCredentials }

// Handle implements Grant.
func (g *ClientCredentialsGrant) Handle(ctx context.Context, req *GrantRequest) (*Token, error) {
	if req.Client == nil || !req.SecretPresented {
		return nil, oautherr.InvalidClient(`Missing parameters. "client_id" and "client_secret" are required`)
	}

	scope, err := g.extractScope(req)
	if err != nil {
		return nil, err
	}

	user, err := g.clientUser(ctx, req.Client)
	if err != nil {
		return nil, err
	}

	scope, err = g.validateScope(ctx, user, req.Client, scope)
	if err != nil {
		return nil, err
	}

	withRefresh := g.issueRefreshToken && g.alwaysIssueNewRefreshToken
	return g.issue(ctx, req.Client, user, scope, scope, withRefresh)
}

// clientUser resolves the principal the token is bound to: the model's
// answer when it implements ClientUserGetter, else the client itself.
func (g *ClientCredentialsGrant) clientUser(ctx context.Context, client *storage.Client) (*storage.User, error) {
	getter, ok := g.model.(storage.ClientUserGetter)
	if !ok {
		return &storage.User{ID: client.ID}, nil
	}

	user, err := call(ctx, g.inst, "getUserFromClient", func(ctx context.Context) (*storage.User, error) {
		return getter.GetUserFromClient(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return nil, oautherr.InvalidGrant("Client credentials are invalid")
	}
	return user, nil
}
