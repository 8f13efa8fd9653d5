package server

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/giantswarm/oauth2-engine/internal/testutil"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/storage"
)

func revokeRequest(form url.Values) *Request {
	return tokenRequest(form)
}

func TestRevoke_RefreshToken(t *testing.T) {
	env := newTestEnv(t, nil)
	token := testutil.GenerateTestRefreshToken(nil)
	env.saveRefreshToken(t, token)

	resp, err := env.srv.Revoke(context.Background(), revokeRequest(url.Values{"token": {token.Token}}))
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if resp.Status != http.StatusOK || resp.Body != nil {
		t.Errorf("response = %+v, want empty 200", resp)
	}

	if got, _ := env.store.GetRefreshToken(context.Background(), token.Token); got != nil {
		t.Error("refresh token still present after revocation")
	}
	_, err = env.srv.Token(context.Background(), refreshRequest(token.Token))
	assertOAuthError(t, err, oautherr.KindInvalidGrant, http.StatusBadRequest, "Invalid refresh token")
}

func TestRevoke_AccessToken(t *testing.T) {
	tests := []struct {
		name string
		hint string
	}{
		{name: "with hint", hint: TokenTypeHintAccessToken},
		{name: "without hint", hint: ""},
		{name: "with wrong hint", hint: TokenTypeHintRefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			token := testutil.GenerateTestAccessToken(nil)
			env.saveAccessToken(t, token)

			form := url.Values{"token": {token.Token}}
			if tt.hint != "" {
				form.Set("token_type_hint", tt.hint)
			}
			if _, err := env.srv.Revoke(context.Background(), revokeRequest(form)); err != nil {
				t.Fatalf("Revoke() error = %v", err)
			}

			_, err := env.srv.Authenticate(context.Background(),
				NewRequest(http.MethodGet, bearerHeader(token.Token), nil, nil))
			assertOAuthError(t, err, oautherr.KindInvalidToken, http.StatusUnauthorized, "")
		})
	}
}

func TestRevoke_UnknownToken(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := env.srv.Revoke(context.Background(), revokeRequest(url.Values{"token": {"never-issued"}}))
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.Status)
	}
}

func TestRevoke_Errors(t *testing.T) {
	env := newTestEnv(t, nil)

	other := &storage.Client{ID: "other-client", Grants: []string{GrantTypeClientCredentials}}
	if err := env.store.SaveClient(context.Background(), other, "other-secret"); err != nil {
		t.Fatalf("SaveClient() error = %v", err)
	}
	token := testutil.GenerateTestRefreshToken(nil)
	env.saveRefreshToken(t, token)

	tests := []struct {
		name       string
		req        *Request
		wantKind   oautherr.Kind
		wantStatus int
		wantDesc   string
	}{
		{
			name:       "GET",
			req:        formRequest(http.MethodGet, url.Values{"token": {token.Token}}, nil),
			wantKind:   oautherr.KindInvalidRequest,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing token",
			req:        revokeRequest(url.Values{}),
			wantKind:   oautherr.KindInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantDesc:   "Missing parameter: `token`",
		},
		{
			name:       "unauthenticated client",
			req:        formRequest(http.MethodPost, url.Values{"token": {token.Token}, "client_id": {testutil.ClientID}}, nil),
			wantKind:   oautherr.KindInvalidClient,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "token of another client",
			req: formRequest(http.MethodPost, url.Values{"token": {token.Token}},
				basicAuth("other-client", "other-secret")),
			wantKind:   oautherr.KindInvalidClient,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.srv.Revoke(context.Background(), tt.req)
			assertOAuthError(t, err, tt.wantKind, tt.wantStatus, tt.wantDesc)
		})
	}

	if got, _ := env.store.GetRefreshToken(context.Background(), token.Token); got == nil {
		t.Error("refresh token was revoked by a failed request")
	}
}
