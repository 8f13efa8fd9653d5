package storage

import (
	"context"
	"net/url"
)

//go:generate mockgen -destination=mock/mock_model.go -package=mock github.com/giantswarm/oauth2-engine/storage FullModel,Model

// Model is the mandatory subset every backend must implement.
type Model interface {
	// GetClient returns the client if id exists and secret matches the
	// stored secret. An empty secret only matches a client without one.
	GetClient(ctx context.Context, id, secret string) (*Client, error)

	// GrantTypeAllowed reports whether the client may use grantType.
	GrantTypeAllowed(ctx context.Context, clientID, grantType string) (bool, error)

	// SaveAccessToken persists a newly issued access token.
	SaveAccessToken(ctx context.Context, token *AccessToken) error
}

// AccessTokenGetter is required to validate bearer tokens.
type AccessTokenGetter interface {
	GetAccessToken(ctx context.Context, token string) (*AccessToken, error)
}

// AccessTokenRevoker lets the revocation endpoint revoke access tokens.
// It reports false if the token did not exist.
type AccessTokenRevoker interface {
	RevokeAccessToken(ctx context.Context, token string) (bool, error)
}

// UserGetter is required by the password grant.
type UserGetter interface {
	GetUser(ctx context.Context, username, password string) (*User, error)
}

// ClientUserGetter resolves the user a client_credentials token is bound to.
// Without it the token is bound to the client's own identity.
type ClientUserGetter interface {
	GetUserFromClient(ctx context.Context, client *Client) (*User, error)
}

// AuthCodeModel is required by the authorization_code grant.
type AuthCodeModel interface {
	GetAuthCode(ctx context.Context, code string) (*AuthorizationCode, error)

	// RevokeAuthCode consumes the code. It must be atomic: when called
	// concurrently for the same code exactly one caller gets true.
	RevokeAuthCode(ctx context.Context, code string) (bool, error)
}

// RefreshTokenModel is required by the refresh_token grant and by every
// grant that issues refresh tokens.
type RefreshTokenModel interface {
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// ExpireRefreshToken revokes the token. It must be atomic: when called
	// concurrently for the same token exactly one caller gets true.
	ExpireRefreshToken(ctx context.Context, token string) (bool, error)
}

// ScopeAuthoriser is required to check scopes on protected resources.
type ScopeAuthoriser interface {
	AuthoriseScope(ctx context.Context, token *AccessToken, scope string) (bool, error)
}

// ScopeValidator narrows or rejects the scope requested at the token
// endpoint. Returning ok=false rejects the request with invalid_scope.
type ScopeValidator interface {
	ValidateScope(ctx context.Context, user *User, client *Client, scope string) (granted string, ok bool, err error)
}

// AccessTokenGenerator overrides the default opaque token generator.
type AccessTokenGenerator interface {
	GenerateAccessToken(ctx context.Context, client *Client, user *User, scope string) (string, error)
}

// RefreshTokenGenerator overrides the default opaque token generator.
type RefreshTokenGenerator interface {
	GenerateRefreshToken(ctx context.Context, client *Client, user *User, scope string) (string, error)
}

// ExtendedGrantHandler serves grant types named by an absolute URI, such as
// "urn:ietf:params:oauth:grant-type:saml2-bearer". It runs after the client
// has been authenticated and the grant type allowed for it. supported=false
// rejects the grant type; a nil user or one without an ID rejects the
// request. An *oautherr.Error returned as err is rendered as is.
type ExtendedGrantHandler interface {
	ExtendedGrant(ctx context.Context, grantType string, req *ExtendedGrantRequest) (supported bool, user *User, err error)
}

// ExtendedGrantRequest is what an ExtendedGrantHandler sees of the token
// request.
type ExtendedGrantRequest struct {
	Client *Client

	// Params holds the form fields of the request body. It is a copy.
	Params url.Values
}

// Provisioner writes the entities the engine only reads. It is used by
// the seed loader and by the (out of scope) authorization endpoint.
type Provisioner interface {
	// SaveClient stores client, hashing secret. An empty secret makes a
	// public client.
	SaveClient(ctx context.Context, client *Client, secret string) error

	// SaveUser stores user under username, hashing password.
	SaveUser(ctx context.Context, user *User, username, password string) error

	SaveAuthCode(ctx context.Context, code *AuthorizationCode) error
}

// FullModel is implemented by every bundled backend.
type FullModel interface {
	Model
	AccessTokenGetter
	AccessTokenRevoker
	UserGetter
	ClientUserGetter
	AuthCodeModel
	RefreshTokenModel
	ScopeAuthoriser
	Provisioner
}
