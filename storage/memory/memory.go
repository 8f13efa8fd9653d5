package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/internal/util"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/validation"
)

const (
	backendName = "memory"

	// DefaultCleanupInterval is how often expired entries are swept.
	DefaultCleanupInterval = time.Minute

	// DefaultExpiredRetention is how long expired tokens and codes are kept
	// after expiry, so a late presentation is reported as expired rather
	// than unknown.
	DefaultExpiredRetention = time.Hour
)

type clientEntry struct {
	client     *storage.Client
	secretHash string
}

type userEntry struct {
	user         *storage.User
	passwordHash string
}

// Store is an in-memory implementation of storage.FullModel. All state is
// owned by the Store value; there is no package-level state.
type Store struct {
	mu sync.RWMutex

	clients       map[string]*clientEntry // client id -> client
	users         map[string]*userEntry   // username -> user
	codes         map[string]*storage.AuthorizationCode
	accessTokens  map[string]*storage.AccessToken
	refreshTokens map[string]*storage.RefreshToken

	// lock-free sizes for the storage gauge
	clientsCount       atomic.Int64
	usersCount         atomic.Int64
	codesCount         atomic.Int64
	accessTokensCount  atomic.Int64
	refreshTokensCount atomic.Int64

	inst   *instrumentation.Instrumentation
	logger *slog.Logger
	now    func() time.Time

	cleanupInterval  time.Duration
	expiredRetention time.Duration
	stopCleanup      chan struct{}
	stopOnce         sync.Once
}

var _ storage.FullModel = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCleanupInterval sets how often expired entries are swept.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.cleanupInterval = d
		}
	}
}

// WithExpiredRetention sets how long expired entries are kept.
func WithExpiredRetention(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.expiredRetention = d
		}
	}
}

// WithInstrumentation records storage metrics and spans.
func WithInstrumentation(inst *instrumentation.Instrumentation) Option {
	return func(s *Store) { s.inst = inst }
}

// New creates a Store and starts its cleanup goroutine. Call Stop to end it.
func New(opts ...Option) *Store {
	s := &Store{
		clients:          make(map[string]*clientEntry),
		users:            make(map[string]*userEntry),
		codes:            make(map[string]*storage.AuthorizationCode),
		accessTokens:     make(map[string]*storage.AccessToken),
		refreshTokens:    make(map[string]*storage.RefreshToken),
		logger:           slog.Default(),
		now:              time.Now,
		cleanupInterval:  DefaultCleanupInterval,
		expiredRetention: DefaultExpiredRetention,
		stopCleanup:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.inst == nil {
		s.inst = instrumentation.NewNoop()
	}

	err := s.inst.RegisterStorageSizeCallbacks(backendName, map[string]instrumentation.StorageSizeCallback{
		"clients":        s.clientsCount.Load,
		"users":          s.usersCount.Load,
		"codes":          s.codesCount.Load,
		"access_tokens":  s.accessTokensCount.Load,
		"refresh_tokens": s.refreshTokensCount.Load,
	})
	if err != nil {
		s.logger.Warn("Failed to register storage size callbacks", "error", err)
	}

	go s.cleanupLoop()
	return s
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *Store) track(ctx context.Context, op string) (context.Context, func(error)) {
	return s.inst.StartStorageOperation(ctx, backendName, op)
}

// ============================================================
// Clients
// ============================================================

// SaveClient stores client with a bcrypt hash of secret.
func (s *Store) SaveClient(ctx context.Context, client *storage.Client, secret string) (err error) {
	_, done := s.track(ctx, "save_client")
	defer func() { done(err) }()

	if client == nil || client.ID == "" {
		return storage.ErrInvalidEntity
	}
	hash, err := security.HashSecret(secret)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[client.ID]; !exists {
		s.clientsCount.Add(1)
	}
	s.clients[client.ID] = &clientEntry{client: client.Clone(), secretHash: hash}

	s.logger.Debug("Saved client", "client_id", client.ID)
	return nil
}

// GetClient returns the client if secret matches, else nil.
func (s *Store) GetClient(ctx context.Context, id, secret string) (_ *storage.Client, err error) {
	_, done := s.track(ctx, "get_client")
	defer func() { done(err) }()

	s.mu.RLock()
	entry := s.clients[id]
	s.mu.RUnlock()

	if entry == nil {
		_ = security.CompareUnknown(secret)
		return nil, nil
	}
	if security.CompareSecret(entry.secretHash, secret) != nil {
		return nil, nil
	}
	return entry.client.Clone(), nil
}

// GrantTypeAllowed reports whether the client lists grantType.
func (s *Store) GrantTypeAllowed(ctx context.Context, clientID, grantType string) (bool, error) {
	_, done := s.track(ctx, "grant_type_allowed")
	defer done(nil)

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry := s.clients[clientID]
	return entry != nil && entry.client.AllowsGrant(grantType), nil
}

// GetUserFromClient returns the client's service user, or the client's own
// identity when it has none.
func (s *Store) GetUserFromClient(ctx context.Context, client *storage.Client) (*storage.User, error) {
	_, done := s.track(ctx, "get_user_from_client")
	defer done(nil)

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
	_, done := s.track(ctx, "save_user")
	defer func() { done(err) }()

	if user == nil || user.ID == "" || username == "" {
		return storage.ErrInvalidEntity
	}
	hash, err := security.HashSecret(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; !exists {
		s.usersCount.Add(1)
	}
	s.users[username] = &userEntry{user: user.Clone(), passwordHash: hash}
	return nil
}

// GetUser returns the user if the password matches, else nil.
func (s *Store) GetUser(ctx context.Context, username, password string) (*storage.User, error) {
	_, done := s.track(ctx, "get_user")
	defer done(nil)

	s.mu.RLock()
	entry := s.users[username]
	s.mu.RUnlock()

	if entry == nil {
		_ = security.CompareUnknown(password)
		return nil, nil
	}
	if entry.passwordHash == "" || security.CompareSecret(entry.passwordHash, password) != nil {
		return nil, nil
	}
	return entry.user.Clone(), nil
}

// ============================================================
// Authorization codes
// ============================================================

// SaveAuthCode stores an authorization code.
func (s *Store) SaveAuthCode(ctx context.Context, code *storage.AuthorizationCode) (err error) {
	_, done := s.track(ctx, "save_auth_code")
	defer func() { done(err) }()

	if code == nil || code.Code == "" {
		return storage.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codes[code.Code]; !exists {
		s.codesCount.Add(1)
	}
	s.codes[code.Code] = code.Clone()
	return nil
}

// GetAuthCode returns the code, or nil if unknown or consumed.
func (s *Store) GetAuthCode(ctx context.Context, code string) (*storage.AuthorizationCode, error) {
	_, done := s.track(ctx, "get_auth_code")
	defer done(nil)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codes[code].Clone(), nil
}

// RevokeAuthCode deletes the code; only the first caller gets true.
func (s *Store) RevokeAuthCode(ctx context.Context, code string) (bool, error) {
	_, done := s.track(ctx, "revoke_auth_code")
	defer done(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code]; !ok {
		return false, nil
	}
	delete(s.codes, code)
	s.codesCount.Add(-1)
	return true, nil
}

// ============================================================
// Access tokens
// ============================================================

// SaveAccessToken stores an issued access token.
func (s *Store) SaveAccessToken(ctx context.Context, token *storage.AccessToken) (err error) {
	_, done := s.track(ctx, "save_access_token")
	defer func() { done(err) }()

	if token == nil || token.Token == "" {
		return storage.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accessTokens[token.Token]; !exists {
		s.accessTokensCount.Add(1)
	}
	s.accessTokens[token.Token] = token.Clone()

	s.logger.Debug("Saved access token",
		"token_prefix", util.TokenPrefix(token.Token),
		"client_id", token.ClientID)
	return nil
}

// GetAccessToken returns the token, or nil if unknown.
func (s *Store) GetAccessToken(ctx context.Context, token string) (*storage.AccessToken, error) {
	_, done := s.track(ctx, "get_access_token")
	defer done(nil)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessTokens[token].Clone(), nil
}

// RevokeAccessToken deletes the token; only the first caller gets true.
func (s *Store) RevokeAccessToken(ctx context.Context, token string) (bool, error) {
	_, done := s.track(ctx, "revoke_access_token")
	defer done(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accessTokens[token]; !ok {
		return false, nil
	}
	delete(s.accessTokens, token)
	s.accessTokensCount.Add(-1)
	return true, nil
}

// AuthoriseScope reports whether the token's scope covers every scope
// token in scope.
func (s *Store) AuthoriseScope(ctx context.Context, token *storage.AccessToken, scope string) (bool, error) {
	_, done := s.track(ctx, "authorise_scope")
	defer done(nil)

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
	_, done := s.track(ctx, "save_refresh_token")
	defer func() { done(err) }()

	if token == nil || token.Token == "" {
		return storage.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.refreshTokens[token.Token]; !exists {
		s.refreshTokensCount.Add(1)
	}
	s.refreshTokens[token.Token] = token.Clone()
	return nil
}

// GetRefreshToken returns the token, or nil if unknown or rotated.
func (s *Store) GetRefreshToken(ctx context.Context, token string) (*storage.RefreshToken, error) {
	_, done := s.track(ctx, "get_refresh_token")
	defer done(nil)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshTokens[token].Clone(), nil
}

// ExpireRefreshToken deletes the token; only the first caller gets true.
func (s *Store) ExpireRefreshToken(ctx context.Context, token string) (bool, error) {
	_, done := s.track(ctx, "expire_refresh_token")
	defer done(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refreshTokens[token]; !ok {
		return false, nil
	}
	delete(s.refreshTokens, token)
	s.refreshTokensCount.Add(-1)

	s.logger.Debug("Expired refresh token", "token_prefix", util.TokenPrefix(token))
	return true, nil
}

// ============================================================
// Cleanup
// ============================================================

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Cleanup removes codes and tokens that expired more than the retention
// period ago. Entries with a nil expiry are kept, except codes, which are
// always expired without one.
func (s *Store) Cleanup() int {
	cutoff := s.now().Add(-s.expiredRetention)

	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned := 0
	for k, c := range s.codes {
		if c.ExpiresAt == nil || c.ExpiresAt.Before(cutoff) {
			delete(s.codes, k)
			s.codesCount.Add(-1)
			cleaned++
		}
	}
	for k, t := range s.accessTokens {
		if security.IsTokenExpired(t.ExpiresAt, cutoff) {
			delete(s.accessTokens, k)
			s.accessTokensCount.Add(-1)
			cleaned++
		}
	}
	for k, t := range s.refreshTokens {
		if security.IsTokenExpired(t.ExpiresAt, cutoff) {
			delete(s.refreshTokens, k)
			s.refreshTokensCount.Add(-1)
			cleaned++
		}
	}

	if cleaned > 0 {
		s.logger.Debug("Cleaned up expired entries", "count", cleaned)
	}
	return cleaned
}

// String implements fmt.Stringer for debugging.
func (s *Store) String() string {
	return fmt.Sprintf("memory.Store{clients=%d users=%d codes=%d access=%d refresh=%d}",
		s.clientsCount.Load(), s.usersCount.Load(), s.codesCount.Load(),
		s.accessTokensCount.Load(), s.refreshTokensCount.Load())
}
