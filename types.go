package oauth

import (
	"strings"

	"github.com/giantswarm/oauth2-engine/server"
)

// Default endpoint paths, relative to the issuer.
const (
	TokenPath      = "/token"
	RevocationPath = "/revoke"
	MetadataPath   = "/.well-known/oauth-authorization-server"
)

// SupportedTokenAuthMethods lists the client authentication methods
// accepted by the token and revocation endpoints.
var SupportedTokenAuthMethods = []string{"client_secret_basic", "client_secret_post", "none"}

// AuthorizationServerMetadata represents OAuth 2.0 Authorization Server Metadata (RFC 8414)
type AuthorizationServerMetadata struct {
	// Issuer is the authorization server's issuer identifier URL
	Issuer string `json:"issuer"`

	// TokenEndpoint is the URL of the token endpoint
	TokenEndpoint string `json:"token_endpoint"`

	// RevocationEndpoint is the URL of the revocation endpoint (RFC 7009)
	RevocationEndpoint string `json:"revocation_endpoint"`

	// GrantTypesSupported lists the enabled grant types
	GrantTypesSupported []string `json:"grant_types_supported"`

	// ResponseTypesSupported is empty: authorization codes are minted
	// outside this server.
	ResponseTypesSupported []string `json:"response_types_supported"`

	TokenEndpointAuthMethodsSupported      []string `json:"token_endpoint_auth_methods_supported"`
	RevocationEndpointAuthMethodsSupported []string `json:"revocation_endpoint_auth_methods_supported"`
}

// Metadata describes this server's endpoints and enabled grants.
func (s *Server) Metadata() AuthorizationServerMetadata {
	issuer := strings.TrimSuffix(s.Config.Issuer, "/")
	return AuthorizationServerMetadata{
		Issuer:                                 issuer,
		TokenEndpoint:                          issuer + TokenPath,
		RevocationEndpoint:                     issuer + RevocationPath,
		GrantTypesSupported:                    enabledGrants(s.Engine.Config),
		ResponseTypesSupported:                 []string{},
		TokenEndpointAuthMethodsSupported:      SupportedTokenAuthMethods,
		RevocationEndpointAuthMethodsSupported: SupportedTokenAuthMethods,
	}
}

// enabledGrants returns the built-in grants in canonical order, then any
// extension grants as configured.
func enabledGrants(cfg *server.Config) []string {
	grants := make([]string, 0, len(cfg.Grants))
	for _, g := range server.SupportedGrantTypes {
		if cfg.GrantEnabled(g) {
			grants = append(grants, g)
		}
	}
	for _, g := range cfg.Grants {
		if server.IsExtendedGrantType(g) {
			grants = append(grants, g)
		}
	}
	return grants
}
