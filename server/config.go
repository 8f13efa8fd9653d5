package server

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/storage"
)

// Grant type names accepted in the grant_type parameter.
const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypePassword          = "password"
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeRefreshToken      = "refresh_token"
)

const (
	// DefaultAccessTokenLifetime is one hour, in seconds.
	DefaultAccessTokenLifetime = 3600

	// DefaultRealm is sent in WWW-Authenticate challenges.
	DefaultRealm = "Service"
)

// SupportedGrantTypes lists every grant the engine implements.
var SupportedGrantTypes = []string{
	GrantTypeAuthorizationCode,
	GrantTypePassword,
	GrantTypeClientCredentials,
	GrantTypeRefreshToken,
}

// Config holds the engine configuration. It is immutable once the Server
// is built.
type Config struct {
	// AccessTokenLifetime in seconds (default: 3600).
	// A negative value issues non-expiring access tokens.
	AccessTokenLifetime int64

	// RefreshTokenLifetime in seconds. Zero or negative issues
	// non-expiring refresh tokens.
	RefreshTokenLifetime int64

	// Grants is the server-level allow-list (default: all supported grants).
	// Absolute URIs name extension grants served by a model implementing
	// storage.ExtendedGrantHandler.
	Grants []string

	// AlwaysIssueNewRefreshToken makes client_credentials issue a refresh
	// token. The other grants issue one whenever refresh_token is enabled.
	AlwaysIssueNewRefreshToken bool

	// PassthroughErrors hands protected-resource errors to the caller
	// instead of rendering them. Token endpoint errors are always rendered.
	PassthroughErrors bool

	// Debug logs failed requests and their causes at Info level. It never
	// changes response content.
	Debug bool

	// InvalidTokenStatus is the status for an unknown bearer token
	// (default: 401). Expired tokens are always 401.
	InvalidTokenStatus int

	// Realm is the WWW-Authenticate realm (default: "Service").
	Realm string
}

func (c *Config) applyDefaults() {
	if c.AccessTokenLifetime == 0 {
		c.AccessTokenLifetime = DefaultAccessTokenLifetime
	}
	if len(c.Grants) == 0 {
		c.Grants = slices.Clone(SupportedGrantTypes)
	}
	if c.InvalidTokenStatus == 0 {
		c.InvalidTokenStatus = http.StatusUnauthorized
	}
	if c.Realm == "" {
		c.Realm = DefaultRealm
	}
}

// GrantEnabled reports whether grantType is in the allow-list.
func (c *Config) GrantEnabled(grantType string) bool {
	return slices.Contains(c.Grants, grantType)
}

// Validate checks the configuration against the capabilities of model.
// Every grant in the allow-list must be backed by the model operations it
// needs.
func (c *Config) Validate(model storage.Model) error {
	if model == nil {
		return oautherr.InvalidArgument("Missing parameter: `model`")
	}

	if c.InvalidTokenStatus != http.StatusBadRequest && c.InvalidTokenStatus != http.StatusUnauthorized {
		return oautherr.InvalidArgument(fmt.Sprintf("invalid token status must be 400 or 401, got %d", c.InvalidTokenStatus))
	}

	for _, grant := range c.Grants {
		if IsExtendedGrantType(grant) {
			if _, ok := model.(storage.ExtendedGrantHandler); !ok {
				return oautherr.InvalidArgument(fmt.Sprintf("grant type %q requires the model to implement ExtendedGrantHandler", grant))
			}
			continue
		}
		if !slices.Contains(SupportedGrantTypes, grant) {
			return oautherr.InvalidArgument(fmt.Sprintf("unsupported grant type %q", grant))
		}
		if missing := missingCapability(model, grant); missing != "" {
			return oautherr.InvalidArgument(fmt.Sprintf("grant type %q requires the model to implement %s", grant, missing))
		}
	}

	// Any grant may issue a refresh token once refresh_token is enabled.
	if c.GrantEnabled(GrantTypeRefreshToken) {
		if _, ok := model.(storage.RefreshTokenModel); !ok {
			return oautherr.InvalidArgument("refresh tokens require the model to implement RefreshTokenModel")
		}
	}

	return nil
}

func missingCapability(model storage.Model, grant string) string {
	switch grant {
	case GrantTypeAuthorizationCode:
		if _, ok := model.(storage.AuthCodeModel); !ok {
			return "AuthCodeModel"
		}
	case GrantTypePassword:
		if _, ok := model.(storage.UserGetter); !ok {
			return "UserGetter"
		}
	case GrantTypeRefreshToken:
		if _, ok := model.(storage.RefreshTokenModel); !ok {
			return "RefreshTokenModel"
		}
	}
	return ""
}
