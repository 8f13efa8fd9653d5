package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/internal/util"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/validation"
)

const (
	// DefaultKeyPrefix is the default prefix for all keys.
	DefaultKeyPrefix = "oauth2:"

	// DefaultExpiredRetention is how long codes and tokens stay readable
	// after they expire.
	DefaultExpiredRetention = 24 * time.Hour

	// minTTL keeps a record written at or after its cutoff readable for the
	// request that wrote it.
	minTTL = time.Second
)

// Config holds configuration for a Store.
type Config struct {
	// KeyPrefix is the prefix for all keys (default "oauth2:")
	KeyPrefix string

	// ExpiredRetention is how long expired codes and tokens are kept
	// (default 24h). Zero selects the default; use a negative value to
	// drop them at expiry.
	ExpiredRetention time.Duration

	// Logger is the optional structured logger (default: slog.Default())
	Logger *slog.Logger

	// Instrumentation records storage metrics and spans (default: no-op)
	Instrumentation *instrumentation.Instrumentation

	// Now overrides time.Now, for tests.
	Now func() time.Time
}

// Store implements storage.FullModel over a Backend.
type Store struct {
	backend   Backend
	prefix    string
	retention time.Duration
	logger    *slog.Logger
	inst      *instrumentation.Instrumentation
	now       func() time.Time
}

var _ storage.FullModel = (*Store)(nil)

// New creates a Store on backend.
func New(backend Backend, cfg Config) *Store {
	s := &Store{
		backend:   backend,
		prefix:    cfg.KeyPrefix,
		retention: cfg.ExpiredRetention,
		logger:    cfg.Logger,
		inst:      cfg.Instrumentation,
		now:       cfg.Now,
	}
	if s.prefix == "" {
		s.prefix = DefaultKeyPrefix
	}
	switch {
	case s.retention == 0:
		s.retention = DefaultExpiredRetention
	case s.retention < 0:
		s.retention = 0
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.inst == nil {
		s.inst = instrumentation.NewNoop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// ============================================================
// Key Helpers
// ============================================================

func (s *Store) clientKey(id string) string         { return s.prefix + "client:" + id }
func (s *Store) userKey(username string) string     { return s.prefix + "user:" + username }
func (s *Store) codeKey(code string) string         { return s.prefix + "code:" + code }
func (s *Store) accessTokenKey(token string) string { return s.prefix + "access:" + token }
func (s *Store) refreshKey(token string) string     { return s.prefix + "refresh:" + token }

// ttlFor returns the TTL for a record expiring at expiresAt. A nil expiry
// never expires unless expireNil is set, in which case the record is
// treated as expired now.
func (s *Store) ttlFor(expiresAt *time.Time, expireNil bool) time.Duration {
	if expiresAt == nil {
		if !expireNil {
			return 0
		}
		return max(s.retention, minTTL)
	}
	return max(expiresAt.Sub(s.now())+s.retention, minTTL)
}

func (s *Store) track(ctx context.Context, op string) (context.Context, func(error)) {
	return s.inst.StartStorageOperation(ctx, s.backend.Name(), op)
}

func (s *Store) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("failed to save %s: %w", key[len(s.prefix):], err)
	}
	return nil
}

// get loads key into v. It reports false if the key does not exist.
func (s *Store) get(ctx context.Context, key string, v any) (bool, error) {
	data, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to get record: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return true, nil
}

// take atomically deletes key. It reports whether the key existed.
func (s *Store) take(ctx context.Context, key string) (bool, error) {
	_, found, err := s.backend.GetDel(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	return found, nil
}

// ============================================================
// Clients
// ============================================================

// SaveClient stores client with a bcrypt hash of secret.
func (s *Store) SaveClient(ctx context.Context, client *storage.Client, secret string) (err error) {
	ctx, done := s.track(ctx, "save_client")
	defer func() { done(err) }()

	if client == nil || client.ID == "" {
		return storage.ErrInvalidEntity
	}
	hash, err := security.HashSecret(secret)
	if err != nil {
		return err
	}

	rec := &clientRecord{
		ID:          client.ID,
		SecretHash:  hash,
		RedirectURI: client.RedirectURI,
		Grants:      client.Grants,
		User:        client.User,
	}
	if err := s.put(ctx, s.clientKey(client.ID), rec, 0); err != nil {
		return err
	}

	s.logger.Debug("Saved client", "client_id", client.ID, "backend", s.backend.Name())
	return nil
}

func (s *Store) loadClient(ctx context.Context, id string) (*clientRecord, error) {
	var rec clientRecord
	found, err := s.get(ctx, s.clientKey(id), &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// GetClient returns the client if secret matches, else nil.
func (s *Store) GetClient(ctx context.Context, id, secret string) (_ *storage.Client, err error) {
	ctx, done := s.track(ctx, "get_client")
	defer func() { done(err) }()

	rec, err := s.loadClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		_ = security.CompareUnknown(secret)
		return nil, nil
	}
	if security.CompareSecret(rec.SecretHash, secret) != nil {
		return nil, nil
	}
	return rec.client(), nil
}

// GrantTypeAllowed reports whether the client lists grantType.
func (s *Store) GrantTypeAllowed(ctx context.Context, clientID, grantType string) (_ bool, err error) {
	ctx, done := s.track(ctx, "grant_type_allowed")
	defer func() { done(err) }()

	rec, err := s.loadClient(ctx, clientID)
	if err != nil || rec == nil {
		return false, err
	}
	return rec.client().AllowsGrant(grantType), nil
}

// GetUserFromClient returns the client's service user, or the client's own
// identity when it has none.
func (s *Store) GetUserFromClient(_ context.Context, client *storage.Client) (*storage.User, error) {
	if client == nil {
		return nil, nil
	}
	if client.User != nil {
		return client.User.Clone(), nil
	}
	return &storage.User{ID: client.ID}, nil
}

// ============================================================
// Users
// ============================================================

// SaveUser stores user under username with a bcrypt hash of password.
func (s *Store) SaveUser(ctx context.Context, user *storage.User, username, password string) (err error) {
	ctx, done := s.track(ctx, "save_user")
	defer func() { done(err) }()

	if user == nil || user.ID == "" || username == "" {
		return storage.ErrInvalidEntity
	}
	hash, err := security.HashSecret(password)
	if err != nil {
		return err
	}
	return s.put(ctx, s.userKey(username), &userRecord{User: user, PasswordHash: hash}, 0)
}

// GetUser returns the user if the password matches, else nil.
func (s *Store) GetUser(ctx context.Context, username, password string) (_ *storage.User, err error) {
	ctx, done := s.track(ctx, "get_user")
	defer func() { done(err) }()

	var rec userRecord
	found, err := s.get(ctx, s.userKey(username), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		_ = security.CompareUnknown(password)
		return nil, nil
	}
	if rec.PasswordHash == "" || security.CompareSecret(rec.PasswordHash, password) != nil {
		return nil, nil
	}
	return rec.User, nil
}

// ============================================================
// Authorization codes
// ============================================================

// SaveAuthCode stores an authorization code.
func (s *Store) SaveAuthCode(ctx context.Context, code *storage.AuthorizationCode) (err error) {
	ctx, done := s.track(ctx, "save_auth_code")
	defer func() { done(err) }()

	if code == nil || code.Code == "" {
		return storage.ErrInvalidEntity
	}
	return s.put(ctx, s.codeKey(code.Code), newCodeRecord(code), s.ttlFor(code.ExpiresAt, true))
}

// GetAuthCode returns the code, or nil if unknown or consumed.
func (s *Store) GetAuthCode(ctx context.Context, code string) (_ *storage.AuthorizationCode, err error) {
	ctx, done := s.track(ctx, "get_auth_code")
	defer func() { done(err) }()

	var rec codeRecord
	found, err := s.get(ctx, s.codeKey(code), &rec)
	if err != nil || !found {
		return nil, err
	}
	return rec.authCode(), nil
}

// RevokeAuthCode deletes the code; only the first caller gets true.
func (s *Store) RevokeAuthCode(ctx context.Context, code string) (_ bool, err error) {
	ctx, done := s.track(ctx, "revoke_auth_code")
	defer func() { done(err) }()

	return s.take(ctx, s.codeKey(code))
}

// ============================================================
// Access tokens
// ============================================================

// SaveAccessToken stores an issued access token.
func (s *Store) SaveAccessToken(ctx context.Context, token *storage.AccessToken) (err error) {
	ctx, done := s.track(ctx, "save_access_token")
	defer func() { done(err) }()

	if token == nil || token.Token == "" {
		return storage.ErrInvalidEntity
	}
	if err := s.put(ctx, s.accessTokenKey(token.Token), newAccessRecord(token), s.ttlFor(token.ExpiresAt, false)); err != nil {
		return err
	}

	s.logger.Debug("Saved access token",
		"token_prefix", util.TokenPrefix(token.Token),
		"client_id", token.ClientID)
	return nil
}

// GetAccessToken returns the token, or nil if unknown.
func (s *Store) GetAccessToken(ctx context.Context, token string) (_ *storage.AccessToken, err error) {
	ctx, done := s.track(ctx, "get_access_token")
	defer func() { done(err) }()

	var rec tokenRecord
	found, err := s.get(ctx, s.accessTokenKey(token), &rec)
	if err != nil || !found {
		return nil, err
	}
	return rec.accessToken(), nil
}

// RevokeAccessToken deletes the token; only the first caller gets true.
func (s *Store) RevokeAccessToken(ctx context.Context, token string) (_ bool, err error) {
	ctx, done := s.track(ctx, "revoke_access_token")
	defer func() { done(err) }()

	return s.take(ctx, s.accessTokenKey(token))
}

// AuthoriseScope reports whether the token's scope covers every scope
// token in scope.
func (s *Store) AuthoriseScope(_ context.Context, token *storage.AccessToken, scope string) (bool, error) {
	if token == nil {
		return false, nil
	}
	return validation.ScopeCovers(token.Scope, scope), nil
}

// ============================================================
// Refresh tokens
// ============================================================

// SaveRefreshToken stores an issued refresh token.
func (s *Store) SaveRefreshToken(ctx context.Context, token *storage.RefreshToken) (err error) {
	ctx, done := s.track(ctx, "save_refresh_token")
	defer func() { done(err) }()

	if token == nil || token.Token == "" {
		return storage.ErrInvalidEntity
	}
	return s.put(ctx, s.refreshKey(token.Token), newRefreshRecord(token), s.ttlFor(token.ExpiresAt, false))
}

// GetRefreshToken returns the token, or nil if unknown or rotated.
func (s *Store) GetRefreshToken(ctx context.Context, token string) (_ *storage.RefreshToken, err error) {
	ctx, done := s.track(ctx, "get_refresh_token")
	defer func() { done(err) }()

	var rec tokenRecord
	found, err := s.get(ctx, s.refreshKey(token), &rec)
	if err != nil || !found {
		return nil, err
	}
	return rec.refreshToken(), nil
}

// ExpireRefreshToken deletes the token; only the first caller gets true.
func (s *Store) ExpireRefreshToken(ctx context.Context, token string) (_ bool, err error) {
	ctx, done := s.track(ctx, "expire_refresh_token")
	defer func() { done(err) }()

	ok, err := s.take(ctx, s.refreshKey(token))
	if ok {
		s.logger.Debug("Expired refresh token",
			"token_prefix", util.TokenPrefix(token))
	}
	return ok, err
}
