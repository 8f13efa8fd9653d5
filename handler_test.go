package oauth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/oauth2-engine/internal/testutil"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/server"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/storage/memory"
)

func setupTestHandler(t *testing.T, cfg *Config) (*Handler, *memory.Store) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	store := memory.New(memory.WithLogger(logger))
	t.Cleanup(store.Stop)
	testutil.SeedFixtures(t, store)

	if cfg == nil {
		cfg = &Config{Issuer: "https://auth.example.com"}
	}
	srv, err := NewServer(store, cfg, logger)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return NewHandler(srv, logger), store
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func clientForm(extra url.Values) url.Values {
	form := url.Values{
		"client_id":     {testutil.ClientID},
		"client_secret": {testutil.ClientSecret},
	}
	for k, v := range extra {
		form[k] = v
	}
	return form
}

func saveAccessToken(t *testing.T, store *memory.Store, token *storage.AccessToken) {
	t.Helper()
	if err := store.SaveAccessToken(context.Background(), token); err != nil {
		t.Fatalf("SaveAccessToken() error = %v", err)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// protected returns a handler chain that echoes the authenticated user ID.
func protected(h *Handler, scopes ...string) http.Handler {
	var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, ok := AuthorisationFromContext(r.Context())
		if !ok {
			http.Error(w, "no authorisation in context", http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, auth.User.ID)
	})
	if len(scopes) > 0 {
		next = h.RequireScope(scopes...)(next)
	}
	return h.Authorise(next)
}

func TestNewHandler(t *testing.T) {
	handler, _ := setupTestHandler(t, nil)

	if handler.logger == nil {
		t.Error("logger should not be nil")
	}
	if handler.tracer == nil {
		t.Error("tracer should not be nil")
	}
}

func TestHandler_ServeToken(t *testing.T) {
	handler, _ := setupTestHandler(t, nil)

	w := httptest.NewRecorder()
	handler.ServeToken(w, postForm(TokenPath, clientForm(url.Values{
		"grant_type": {server.GrantTypePassword},
		"username":   {testutil.Username},
		"password":   {testutil.Password},
		"scope":      {"read"},
	})))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}

	for header, want := range map[string]string{
		"Cache-Control":             "no-store",
		"Pragma":                    "no-cache",
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Content-Type":              "application/json",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if n := len(w.Header().Values("Cache-Control")); n != 1 {
		t.Errorf("Cache-Control sent %d times, want once", n)
	}

	var body server.TokenResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}
	if body.AccessToken == "" || body.RefreshToken == "" {
		t.Errorf("token response = %+v, want access and refresh tokens", body)
	}
	if body.TokenType != server.TokenTypeBearer {
		t.Errorf("token_type = %q, want %q", body.TokenType, server.TokenTypeBearer)
	}
	if body.ExpiresIn != server.DefaultAccessTokenLifetime {
		t.Errorf("expires_in = %d, want %d", body.ExpiresIn, server.DefaultAccessTokenLifetime)
	}
	if body.Scope != "read" {
		t.Errorf("scope = %q, want read", body.Scope)
	}
}

func TestHandler_ServeToken_Errors(t *testing.T) {
	handler, _ := setupTestHandler(t, nil)

	basic := func(id, secret string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(id+":"+secret))
	}

	tests := []struct {
		name          string
		req           func() *http.Request
		wantStatus    int
		wantCode      string
		wantChallenge string
	}{
		{
			name: "GET",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, TokenPath+"?grant_type=password", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "JSON body",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, TokenPath, strings.NewReader(`{"grant_type":"password"}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "unsupported grant",
			req: func() *http.Request {
				return postForm(TokenPath, clientForm(url.Values{"grant_type": {"implicit"}}))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "unsupported_grant_type",
		},
		{
			name: "wrong secret in body",
			req: func() *http.Request {
				return postForm(TokenPath, url.Values{
					"grant_type":    {server.GrantTypeClientCredentials},
					"client_id":     {testutil.ClientID},
					"client_secret": {"nope"},
				})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_client",
		},
		{
			name: "wrong secret in basic auth",
			req: func() *http.Request {
				r := postForm(TokenPath, url.Values{"grant_type": {server.GrantTypeClientCredentials}})
				r.Header.Set("Authorization", basic(testutil.ClientID, "nope"))
				return r
			},
			wantStatus:    http.StatusUnauthorized,
			wantCode:      "invalid_client",
			wantChallenge: `Basic realm="Service"`,
		},
		{
			name: "bad user credentials",
			req: func() *http.Request {
				return postForm(TokenPath, clientForm(url.Values{
					"grant_type": {server.GrantTypePassword},
					"username":   {testutil.Username},
					"password":   {"wrong"},
				}))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_grant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeToken(w, tt.req())

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("WWW-Authenticate"); got != tt.wantChallenge {
				t.Errorf("WWW-Authenticate = %q, want %q", got, tt.wantChallenge)
			}
			if got := w.Header().Get("Cache-Control"); got != "no-store" {
				t.Errorf("Cache-Control = %q, want no-store", got)
			}

			body := decodeError(t, w)
			if body.Error != tt.wantCode {
				t.Errorf("error = %q, want %q", body.Error, tt.wantCode)
			}
			if body.Code != tt.wantStatus {
				t.Errorf("code = %d, want %d", body.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandler_ServeToken_RateLimit(t *testing.T) {
	handler, _ := setupTestHandler(t, &Config{
		RateLimit: RateLimitConfig{
			Token: security.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1},
		},
	})

	form := clientForm(url.Values{"grant_type": {server.GrantTypeClientCredentials}})

	w := httptest.NewRecorder()
	handler.ServeToken(w, postForm(TokenPath, form))
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeToken(w, postForm(TokenPath, form))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}
	body := decodeError(t, w)
	if body.Error != ErrorCodeRateLimitExceeded || body.Code != http.StatusTooManyRequests {
		t.Errorf("body = %+v", body)
	}

	// A different client has its own bucket.
	w = httptest.NewRecorder()
	handler.ServeToken(w, postForm(TokenPath, url.Values{
		"grant_type": {server.GrantTypeClientCredentials},
		"client_id":  {"another-client"},
	}))
	if w.Code == http.StatusTooManyRequests {
		t.Error("another client was rate limited")
	}
}

func TestTokenRateLimitKey(t *testing.T) {
	basic := http.Header{"Authorization": {"Basic " + base64.StdEncoding.EncodeToString([]byte("basic-client:s"))}}

	tests := []struct {
		name       string
		req        *server.Request
		wantKey    string
		wantClient string
	}{
		{
			name:       "basic auth",
			req:        server.NewRequest(http.MethodPost, basic, nil, url.Values{"client_id": {"body-client"}}),
			wantKey:    "client:basic-client",
			wantClient: "basic-client",
		},
		{
			name:       "body",
			req:        server.NewRequest(http.MethodPost, nil, nil, url.Values{"client_id": {"body-client"}}),
			wantKey:    "client:body-client",
			wantClient: "body-client",
		},
		{
			name:    "anonymous",
			req:     server.NewRequest(http.MethodPost, nil, nil, nil),
			wantKey: "ip:192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, clientID := tokenRateLimitKey(tt.req, "192.0.2.1")
			if key != tt.wantKey || clientID != tt.wantClient {
				t.Errorf("tokenRateLimitKey() = %q, %q; want %q, %q", key, clientID, tt.wantKey, tt.wantClient)
			}
		})
	}
}

func TestHandler_ServeRevocation(t *testing.T) {
	handler, store := setupTestHandler(t, nil)
	token := testutil.GenerateTestAccessToken(nil)
	saveAccessToken(t, store, token)

	w := httptest.NewRecorder()
	handler.ServeRevocation(w, postForm(RevocationPath, clientForm(url.Values{
		"token":           {token.Token},
		"token_type_hint": {"access_token"},
	})))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	w = httptest.NewRecorder()
	protected(handler).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", w.Code)
	}
}

func TestHandler_ServeRevocation_MissingToken(t *testing.T) {
	handler, _ := setupTestHandler(t, nil)

	w := httptest.NewRecorder()
	handler.ServeRevocation(w, postForm(RevocationPath, clientForm(nil)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decodeError(t, w); body.ErrorDescription != "Missing parameter: `token`" {
		t.Errorf("error_description = %q", body.ErrorDescription)
	}
}

func TestHandler_Authorise(t *testing.T) {
	handler, store := setupTestHandler(t, nil)

	valid := testutil.GenerateTestAccessToken(testutil.TimePtr(time.Now().Add(time.Hour)))
	expired := testutil.GenerateTestAccessToken(testutil.TimePtr(time.Now().Add(-time.Minute)))
	saveAccessToken(t, store, valid)
	saveAccessToken(t, store, expired)

	tests := []struct {
		name          string
		req           func() *http.Request
		wantStatus    int
		wantBody      string
		wantCode      string
		wantChallenge string
	}{
		{
			name: "header",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/resource", nil)
				r.Header.Set("Authorization", "Bearer "+valid.Token)
				return r
			},
			wantStatus: http.StatusOK,
			wantBody:   testutil.UserID,
		},
		{
			name: "query",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/resource?access_token="+valid.Token, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   testutil.UserID,
		},
		{
			name: "form body",
			req: func() *http.Request {
				return postForm("/resource", url.Values{"access_token": {valid.Token}})
			},
			wantStatus: http.StatusOK,
			wantBody:   testutil.UserID,
		},
		{
			name: "missing",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/resource", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "unknown",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/resource", nil)
				r.Header.Set("Authorization", "Bearer unknown")
				return r
			},
			wantStatus:    http.StatusUnauthorized,
			wantCode:      "invalid_token",
			wantChallenge: `Bearer realm="Service", error="invalid_token", error_description="The access token provided is invalid."`,
		},
		{
			name: "expired",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/resource", nil)
				r.Header.Set("Authorization", "Bearer "+expired.Token)
				return r
			},
			wantStatus:    http.StatusUnauthorized,
			wantCode:      "invalid_token",
			wantChallenge: `Bearer realm="Service", error="invalid_token", error_description="The access token provided has expired."`,
		},
		{
			name: "header and query",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/resource?access_token="+valid.Token, nil)
				r.Header.Set("Authorization", "Bearer "+valid.Token)
				return r
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			protected(handler).ServeHTTP(w, tt.req())

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if got := w.Header().Get("WWW-Authenticate"); got != tt.wantChallenge {
				t.Errorf("WWW-Authenticate = %q, want %q", got, tt.wantChallenge)
			}
			if tt.wantCode != "" {
				if body := decodeError(t, w); body.Error != tt.wantCode {
					t.Errorf("error = %q, want %q", body.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestHandler_Authorise_BodyStillReadable(t *testing.T) {
	handler, store := setupTestHandler(t, nil)
	token := testutil.GenerateTestAccessToken(nil)
	saveAccessToken(t, store, token)

	form := url.Values{"access_token": {token.Token}, "payload": {"hello"}}

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		got = r.PostForm.Get("payload")
	})

	w := httptest.NewRecorder()
	handler.Authorise(next).ServeHTTP(w, postForm("/resource", form))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got != "hello" {
		t.Errorf("downstream payload = %q, want hello", got)
	}
}

func TestHandler_Authorise_RateLimit(t *testing.T) {
	handler, store := setupTestHandler(t, &Config{
		RateLimit: RateLimitConfig{
			Resource: security.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1},
		},
	})
	token := testutil.GenerateTestAccessToken(nil)
	saveAccessToken(t, store, token)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		req.Header.Set("Authorization", "Bearer "+token.Token)
		w := httptest.NewRecorder()
		protected(handler).ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("request %d status = %d, want %d", i, w.Code, want)
		}
	}
}

func TestHandler_RequireScope(t *testing.T) {
	handler, store := setupTestHandler(t, nil)
	token := testutil.GenerateTestAccessToken(nil) // scope "read write"
	saveAccessToken(t, store, token)

	tests := []struct {
		name         string
		scopes       []string
		wantStatus   int
		wantAccepted string
	}{
		{name: "granted", scopes: []string{"read"}, wantStatus: http.StatusOK, wantAccepted: "read"},
		{name: "all granted", scopes: []string{"read", "write"}, wantStatus: http.StatusOK, wantAccepted: "read write"},
		{name: "not granted", scopes: []string{"admin"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/resource", nil)
			req.Header.Set("Authorization", "Bearer "+token.Token)
			w := httptest.NewRecorder()
			protected(handler, tt.scopes...).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get(server.HeaderAcceptedScopes); got != tt.wantAccepted {
				t.Errorf("%s = %q, want %q", server.HeaderAcceptedScopes, got, tt.wantAccepted)
			}
			if tt.wantStatus != http.StatusOK {
				if body := decodeError(t, w); body.Error != "invalid_scope" {
					t.Errorf("error = %q, want invalid_scope", body.Error)
				}
				return
			}
			if got := w.Header().Get(server.HeaderGrantedScopes); got != token.Scope {
				t.Errorf("%s = %q, want %q", server.HeaderGrantedScopes, got, token.Scope)
			}
		})
	}
}

func TestHandler_RequireScope_WithoutAuthorise(t *testing.T) {
	handler, _ := setupTestHandler(t, nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler called without an authorisation")
	})

	w := httptest.NewRecorder()
	handler.RequireScope("read")(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandler_PassthroughErrors(t *testing.T) {
	var passed error
	handler, _ := setupTestHandler(t, &Config{
		Server: server.Config{PassthroughErrors: true},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			passed = err
			w.WriteHeader(http.StatusTeapot)
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer unknown")
	w := httptest.NewRecorder()
	protected(handler).ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want the error handler's 418", w.Code)
	}
	if !oautherr.Is(passed, oautherr.KindInvalidToken) {
		t.Errorf("passed error = %v, want invalid_token", passed)
	}

	// Token endpoint errors are always rendered.
	w = httptest.NewRecorder()
	handler.ServeToken(w, postForm(TokenPath, url.Values{}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("token endpoint status = %d, want 400", w.Code)
	}
}

func TestHandler_ServeAuthorizationServerMetadata(t *testing.T) {
	handler, _ := setupTestHandler(t, &Config{
		Issuer: "https://auth.example.com/",
		Server: server.Config{Grants: []string{server.GrantTypeRefreshToken, server.GrantTypePassword}},
	})

	w := httptest.NewRecorder()
	handler.ServeAuthorizationServerMetadata(w, httptest.NewRequest(http.MethodGet, MetadataPath, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var meta AuthorizationServerMetadata
	if err := json.NewDecoder(w.Body).Decode(&meta); err != nil {
		t.Fatalf("failed to decode metadata: %v", err)
	}
	if meta.Issuer != "https://auth.example.com" {
		t.Errorf("issuer = %q", meta.Issuer)
	}
	if meta.TokenEndpoint != "https://auth.example.com/token" {
		t.Errorf("token_endpoint = %q", meta.TokenEndpoint)
	}
	if meta.RevocationEndpoint != "https://auth.example.com/revoke" {
		t.Errorf("revocation_endpoint = %q", meta.RevocationEndpoint)
	}
	if strings.Join(meta.GrantTypesSupported, ",") != "password,refresh_token" {
		t.Errorf("grant_types_supported = %v", meta.GrantTypesSupported)
	}

	w = httptest.NewRecorder()
	handler.ServeAuthorizationServerMetadata(w, httptest.NewRequest(http.MethodPost, MetadataPath, nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", w.Code)
	}
}

func TestAuthorisationFromContext(t *testing.T) {
	if _, ok := AuthorisationFromContext(context.Background()); ok {
		t.Error("empty context returned an authorisation")
	}

	auth := &server.Authorisation{User: &storage.User{ID: "u"}}
	got, ok := AuthorisationFromContext(ContextWithAuthorisation(context.Background(), auth))
	if !ok || got != auth {
		t.Errorf("AuthorisationFromContext() = %v, %v", got, ok)
	}
}

func TestMalformedRequest(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := malformedRequest(cause)

	if err.Kind != oautherr.KindInvalidRequest {
		t.Errorf("kind = %s, want invalid_request", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not wrapped")
	}
	if strings.Contains(err.Body().ErrorDescription, "EOF") {
		t.Error("cause leaked into the description")
	}
}

func TestHandler_Authorise_BodyTokenTransport(t *testing.T) {
	handler, store := setupTestHandler(t, nil)

	valid := testutil.GenerateTestAccessToken(testutil.TimePtr(time.Now().Add(time.Hour)))
	saveAccessToken(t, store, valid)

	var multipartBody bytes.Buffer
	mw := multipart.NewWriter(&multipartBody)
	if err := mw.WriteField("access_token", valid.Token); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	tests := []struct {
		name     string
		req      func() *http.Request
		wantDesc string
	}{
		{
			name: "form body on GET",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/resource", strings.NewReader("access_token="+valid.Token))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			wantDesc: "Method cannot be GET When putting the token in the body.",
		},
		{
			name: "multipart body",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/resource", bytes.NewReader(multipartBody.Bytes()))
				r.Header.Set("Content-Type", mw.FormDataContentType())
				return r
			},
			wantDesc: "When putting the token in the body, content type must be application/x-www-form-urlencoded.",
		},
		{
			name: "json body",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/resource", strings.NewReader(`{"access_token":"`+valid.Token+`"}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			wantDesc: "When putting the token in the body, content type must be application/x-www-form-urlencoded.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			protected(handler).ServeHTTP(w, tt.req())

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
			body := decodeError(t, w)
			if body.Error != "invalid_request" || body.ErrorDescription != tt.wantDesc {
				t.Errorf("error = %q %q, want invalid_request %q", body.Error, body.ErrorDescription, tt.wantDesc)
			}
		})
	}
}
