// Package server implements the OAuth 2.0 token engine.
//
// The Server validates token requests, runs one of the four grant types
// (authorization_code, password, client_credentials, refresh_token),
// authenticates bearer tokens on protected resources, checks their scopes
// and revokes tokens (RFC 7009). It is transport-neutral: callers build an
// immutable Request, and receive a Response or an *oautherr.Error to render
// with RenderError. The root oauth package adapts it to net/http.
//
// All entities live in a storage.Model. The engine keeps no state across
// requests and never serializes concurrent requests itself: single-use
// codes and refresh token rotation rely on the model's atomic
// RevokeAuthCode and ExpireRefreshToken.
//
// Example usage:
//
//	store := memory.New()
//	defer store.Stop()
//
//	srv, err := server.New(store, &server.Config{
//	    AccessTokenLifetime:  3600,
//	    RefreshTokenLifetime: 14 * 24 * 3600,
//	}, logger)
//	if err != nil {
//	    return err
//	}
//
//	req, err := server.FromHTTP(r)
//	if err != nil {
//	    return err
//	}
//	resp := srv.HandleToken(r.Context(), req)
//	_ = resp.Write(w)
package server
