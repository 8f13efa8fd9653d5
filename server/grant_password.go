package server

import (
	"context"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/storage"
)

// PasswordGrant is the resource owner password credentials grant
// (RFC 6749 section 4.3).
type PasswordGrant struct {
	grantBase
	users storage.UserGetter
}

// NewPasswordGrant requires a model implementing UserGetter.
func NewPasswordGrant(opts GrantOptions) (*PasswordGrant, error) {
	base, err := newGrantBase(opts)
	if err != nil {
		return nil, err
	}
	users, ok := opts.Model.(storage.UserGetter)
	if !ok {
		return nil, oautherr.InvalidArgument("password requires the model to implement UserGetter")
	}
	return &PasswordGrant{grantBase: base, users: users}, nil
}

// Type implements Grant.
func (g *PasswordGrant) Type() string { return GrantTypePassword }

// Handle implements Grant.
func (g *PasswordGrant) Handle(ctx context.Context, req *GrantRequest) (*Token, error) {
	username := req.Body("username")
	password := req.Body("password")
	if username == "" || password == "" {
		return nil, oautherr.InvalidRequest(`Missing parameters. "username" and "password" are required`)
	}

	scope, err := g.extractScope(req)
	if err != nil {
		return nil, err
	}

	user, err := call(ctx, g.inst, "getUser", func(ctx context.Context) (*storage.User, error) {
		return g.users.GetUser(ctx, username, password)
	})
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return nil, oautherr.InvalidGrant("User credentials are invalid")
	}

	scope, err = g.validateScope(ctx, user, req.Client, scope)
	if err != nil {
		return nil, err
	}

	return g.issue(ctx, req.Client, user, scope, scope, g.issueRefreshToken)
}
