package testutil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giantswarm/oauth2-engine/storage"
)

// Fixture identities shared by the engine tests.
const (
	ClientID     = "test-client"
	ClientSecret = "test-secret"
	RedirectURI  = "https://client.example.com/callback"
	UserID       = "user-123"
	Username     = "alice"
	Password     = "wonderland"
)

// MockTime provides a controllable time source for deterministic testing.
// It is safe for concurrent use.
type MockTime struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockTime creates a new mock time provider
func NewMockTime(t time.Time) *MockTime {
	return &MockTime{now: t}
}

// Now returns the current mock time
func (m *MockTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock time forward by the given duration
func (m *MockTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock time to a specific value
func (m *MockTime) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// GenerateTestClient creates a confidential client allowed every grant.
func GenerateTestClient() *storage.Client {
	return &storage.Client{
		ID:          ClientID,
		RedirectURI: RedirectURI,
		Grants:      []string{"authorization_code", "password", "client_credentials", "refresh_token"},
	}
}

// GenerateTestUser creates the fixture user.
func GenerateTestUser() *storage.User {
	return &storage.User{
		ID:         UserID,
		Attributes: map[string]any{"email": "alice@example.com"},
	}
}

// GenerateTestAuthorizationCode creates a code for the fixture client and
// user that expires at expiresAt.
func GenerateTestAuthorizationCode(expiresAt time.Time) *storage.AuthorizationCode {
	return &storage.AuthorizationCode{
		Code:        GenerateRandomString(40),
		ClientID:    ClientID,
		User:        GenerateTestUser(),
		UserID:      UserID,
		ExpiresAt:   &expiresAt,
		RedirectURI: RedirectURI,
		Scope:       "read write",
	}
}

// GenerateTestRefreshToken creates a refresh token for the fixture client
// and user. A nil expiresAt never expires.
func GenerateTestRefreshToken(expiresAt *time.Time) *storage.RefreshToken {
	return &storage.RefreshToken{
		Token:     GenerateRandomString(40),
		ClientID:  ClientID,
		User:      GenerateTestUser(),
		UserID:    UserID,
		ExpiresAt: expiresAt,
		Scope:     "read write",
	}
}

// GenerateTestAccessToken creates an access token for the fixture client
// and user. A nil expiresAt never expires.
func GenerateTestAccessToken(expiresAt *time.Time) *storage.AccessToken {
	return &storage.AccessToken{
		Token:     GenerateRandomString(40),
		ClientID:  ClientID,
		User:      GenerateTestUser(),
		UserID:    UserID,
		ExpiresAt: expiresAt,
		Scope:     "read write",
	}
}

// SeedFixtures provisions the fixture client and user into p.
func SeedFixtures(t *testing.T, p storage.Provisioner) {
	t.Helper()
	ctx := context.Background()
	if err := p.SaveClient(ctx, GenerateTestClient(), ClientSecret); err != nil {
		t.Fatalf("SaveClient() error = %v", err)
	}
	if err := p.SaveUser(ctx, GenerateTestUser(), Username, Password); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
}

// GenerateRandomString generates a random base64-encoded string
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate random string: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length]
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

// AssertEqual fails the test if got != want
func AssertEqual(t *testing.T, got, want any) {
	t.Helper()
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// AssertStringContains fails the test if s does not contain substr
func AssertStringContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("string %q does not contain %q", s, substr)
	}
}

// HTTPRequest is a helper for making test HTTP requests
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// NewHTTPRequest creates a new HTTP request helper
func NewHTTPRequest(method, url string) *HTTPRequest {
	return &HTTPRequest{
		Method:  method,
		URL:     url,
		Headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (r *HTTPRequest) WithHeader(key, value string) *HTTPRequest {
	r.Headers[key] = value
	return r
}

// WithBody sets the request body
func (r *HTTPRequest) WithBody(body string) *HTTPRequest {
	r.Body = body
	return r
}

// WithForm sets a form-encoded body and the matching content type.
func (r *HTTPRequest) WithForm(body string) *HTTPRequest {
	r.Headers["Content-Type"] = "application/x-www-form-urlencoded"
	r.Body = body
	return r
}

// Do executes the HTTP request
func (r *HTTPRequest) Do(handler http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.Method, r.URL, strings.NewReader(r.Body))
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
