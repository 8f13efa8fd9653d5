package server

import (
	"context"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
)

// Token type hints of RFC 7009 section 2.1.
const (
	TokenTypeHintAccessToken  = "access_token"
	TokenTypeHintRefreshToken = "refresh_token"
)

// Revoke handles an RFC 7009 revocation request. The client authenticates
// as on the token endpoint. Unknown tokens are not an error.
func (s *Server) Revoke(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := s.inst.Tracer("server").Start(ctx, "oauth.revoke")
	defer span.End()

	tokenType, err := s.revoke(ctx, req)
	if err != nil {
		instrumentation.RecordError(span, err)
		s.logFailure(ctx, "Revocation request failed", err)
		return nil, err
	}

	if tokenType != "" {
		s.inst.Metrics().RecordTokenRevoked(ctx, tokenType)
		s.Auditor.LogTokenRevoked(extractClientCredentials(req).id, "", req.Body("token_type_hint"))
	}

	instrumentation.SetSpanSuccess(span)
	resp := NewResponse()
	security.SetNoStore(resp.Header)
	return resp, nil
}

// HandleRevoke is Revoke with errors already rendered.
func (s *Server) HandleRevoke(ctx context.Context, req *Request) *Response {
	resp, err := s.Revoke(ctx, req)
	if err != nil {
		return s.RenderError(err)
	}
	return resp
}

// revoke returns the type of the revoked token, or "" when the token was
// unknown.
func (s *Server) revoke(ctx context.Context, req *Request) (string, error) {
	if err := requireFormPost(req); err != nil {
		return "", err
	}

	creds := extractClientCredentials(req)
	client, err := s.authenticateClient(ctx, creds)
	if err != nil {
		return "", err
	}

	token := req.Body("token")
	if token == "" {
		return "", oautherr.InvalidRequest("Missing parameter: `token`")
	}

	order := []string{TokenTypeHintRefreshToken, TokenTypeHintAccessToken}
	if req.Body("token_type_hint") == TokenTypeHintAccessToken {
		order = []string{TokenTypeHintAccessToken, TokenTypeHintRefreshToken}
	}

	for _, tokenType := range order {
		var revoked bool
		switch tokenType {
		case TokenTypeHintRefreshToken:
			revoked, err = s.revokeRefreshToken(ctx, creds, client, token)
		case TokenTypeHintAccessToken:
			revoked, err = s.revokeAccessToken(ctx, creds, client, token)
		}
		if err != nil {
			return "", err
		}
		if revoked {
			return tokenType, nil
		}
	}
	return "", nil
}

func (s *Server) revokeRefreshToken(ctx context.Context, creds clientCredentials, client *storage.Client, token string) (bool, error) {
	tokens, ok := s.model.(storage.RefreshTokenModel)
	if !ok {
		return false, nil
	}

	stored, err := call(ctx, s.inst, "getRefreshToken", func(ctx context.Context) (*storage.RefreshToken, error) {
		return tokens.GetRefreshToken(ctx, token)
	})
	if err != nil || stored == nil {
		return false, err
	}
	if stored.ClientID != client.ID {
		return false, invalidClient(creds, "Invalid client: token was issued to another client")
	}

	return call(ctx, s.inst, "expireRefreshToken", func(ctx context.Context) (bool, error) {
		return tokens.ExpireRefreshToken(ctx, token)
	})
}

func (s *Server) revokeAccessToken(ctx context.Context, creds clientCredentials, client *storage.Client, token string) (bool, error) {
	getter, ok := s.model.(storage.AccessTokenGetter)
	if !ok {
		return false, nil
	}
	revoker, ok := s.model.(storage.AccessTokenRevoker)
	if !ok {
		return false, nil
	}

	stored, err := call(ctx, s.inst, "getAccessToken", func(ctx context.Context) (*storage.AccessToken, error) {
		return getter.GetAccessToken(ctx, token)
	})
	if err != nil || stored == nil {
		return false, err
	}
	if stored.ClientID != client.ID {
		return false, invalidClient(creds, "Invalid client: token was issued to another client")
	}

	return call(ctx, s.inst, "revokeAccessToken", func(ctx context.Context) (bool, error) {
		return revoker.RevokeAccessToken(ctx, token)
	})
}
