package server

import (
	"context"
	"errors"
	"slices"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/validation"
)

// IsExtendedGrantType reports whether grantType names an extension grant:
// an absolute URI that is not one of the built-in grant types
// (RFC 6749 section 4.5).
func IsExtendedGrantType(grantType string) bool {
	return !slices.Contains(SupportedGrantTypes, grantType) && validation.URI(grantType)
}

// ExtendedGrant delegates an extension grant type to the model's
// storage.ExtendedGrantHandler.
type ExtendedGrant struct {
	grantBase
	grantType string
	handler   storage.ExtendedGrantHandler
}

// NewExtendedGrant builds the strategy for grantType. The model must
// implement storage.ExtendedGrantHandler.
func NewExtendedGrant(grantType string, opts GrantOptions) (*ExtendedGrant, error) {
	if !IsExtendedGrantType(grantType) {
		return nil, oautherr.InvalidArgument("extension grant type must be an absolute URI, got " + grantType)
	}
	base, err := newGrantBase(opts)
	if err != nil {
		return nil, err
	}
	handler, ok := base.model.(storage.ExtendedGrantHandler)
	if !ok {
		return nil, oautherr.InvalidArgument("Invalid argument: model does not implement `extendedGrant()`")
	}
	return &ExtendedGrant{grantBase: base, grantType: grantType, handler: handler}, nil
}

// Type implements Grant.
func (g *ExtendedGrant) Type() string { return g.grantType }

// Handle implements Grant.
func (g *ExtendedGrant) Handle(ctx context.Context, req *GrantRequest) (*Token, error) {
	scope, err := g.extractScope(req)
	if err != nil {
		return nil, err
	}

	supported, user, err := g.callHandler(ctx, req)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, oautherr.InvalidRequest("Invalid grant_type parameter or parameter missing")
	}
	if user == nil || user.ID == "" {
		return nil, oautherr.InvalidRequest("Invalid request.")
	}

	scope, err = g.validateScope(ctx, user, req.Client, scope)
	if err != nil {
		return nil, err
	}
	return g.issue(ctx, req.Client, user, scope, scope, g.issueRefreshToken)
}

// callHandler runs the model's handler. OAuth errors it returns are kept,
// anything else becomes a server_error.
func (g *ExtendedGrant) callHandler(ctx context.Context, req *GrantRequest) (bool, *storage.User, error) {
	ctx, done := g.inst.StartModelCall(ctx, "extendedGrant")
	supported, user, err := g.handler.ExtendedGrant(ctx, g.grantType, &storage.ExtendedGrantRequest{
		Client: req.Client,
		Params: req.BodyValues(),
	})
	done(err)
	if err != nil {
		var oe *oautherr.Error
		if errors.As(err, &oe) {
			return false, nil, oe
		}
		return false, nil, oautherr.Server(err)
	}
	return supported, user, nil
}
