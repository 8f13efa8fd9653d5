package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
	"github.com/giantswarm/oauth2-engine/validation"
)

// Grant is one grant type strategy. It runs after the client has been
// authenticated and the grant type allowed for it.
type Grant interface {
	// Type returns the grant_type value the strategy serves.
	Type() string

	// Handle validates the grant-specific parameters and issues tokens.
	Handle(ctx context.Context, req *GrantRequest) (*Token, error)
}

// GrantRequest is a token request from an authenticated client.
type GrantRequest struct {
	*Request

	Client *storage.Client

	// SecretPresented is true when the client authenticated with a secret.
	SecretPresented bool
}

// Token is the result of a successful grant.
type Token struct {
	AccessToken           string
	AccessTokenExpiresAt  *time.Time
	RefreshToken          string
	RefreshTokenExpiresAt *time.Time
	Scope                 string
	Client                *storage.Client
	User                  *storage.User
}

// GrantOptions configures a grant strategy.
type GrantOptions struct {
	Model storage.Model

	// AccessTokenLifetime in seconds, required. Negative issues
	// non-expiring tokens.
	AccessTokenLifetime int64

	// RefreshTokenLifetime in seconds. Zero or negative issues
	// non-expiring refresh tokens.
	RefreshTokenLifetime int64

	// IssueRefreshToken is set when the refresh_token grant is enabled.
	IssueRefreshToken bool

	AlwaysIssueNewRefreshToken bool

	Now             func() time.Time
	Instrumentation *instrumentation.Instrumentation
	Logger          *slog.Logger
}

// grantBase holds the behaviour shared by every grant type.
type grantBase struct {
	model                      storage.Model
	accessTokenLifetime        int64
	refreshTokenLifetime       int64
	issueRefreshToken          bool
	alwaysIssueNewRefreshToken bool
	now                        func() time.Time
	inst                       *instrumentation.Instrumentation
	logger                     *slog.Logger
}

func newGrantBase(opts GrantOptions) (grantBase, error) {
	if opts.Model == nil {
		return grantBase{}, oautherr.InvalidArgument("Missing parameter: `model`")
	}
	if opts.AccessTokenLifetime == 0 {
		return grantBase{}, oautherr.InvalidArgument("Missing parameter: `accessTokenLifetime`")
	}

	b := grantBase{
		model:                      opts.Model,
		accessTokenLifetime:        opts.AccessTokenLifetime,
		refreshTokenLifetime:       opts.RefreshTokenLifetime,
		issueRefreshToken:          opts.IssueRefreshToken,
		alwaysIssueNewRefreshToken: opts.AlwaysIssueNewRefreshToken,
		now:                        opts.Now,
		inst:                       opts.Instrumentation,
		logger:                     opts.Logger,
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.inst == nil {
		b.inst = instrumentation.NewNoop()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}

	if b.issueRefreshToken {
		if _, ok := b.model.(storage.RefreshTokenModel); !ok {
			return grantBase{}, oautherr.InvalidArgument("refresh tokens require the model to implement RefreshTokenModel")
		}
	}
	return b, nil
}

// call runs one Model operation inside a span. Any failure is collapsed
// into a server_error.
func call[T any](ctx context.Context, inst *instrumentation.Instrumentation, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, done := inst.StartModelCall(ctx, op)
	v, err := fn(ctx)
	done(err)
	if err != nil {
		var zero T
		return zero, oautherr.Server(err)
	}
	return v, nil
}

func (b *grantBase) generateAccessToken(ctx context.Context, client *storage.Client, user *storage.User, scope string) (string, error) {
	if gen, ok := b.model.(storage.AccessTokenGenerator); ok {
		token, err := call(ctx, b.inst, "generateAccessToken", func(ctx context.Context) (string, error) {
			return gen.GenerateAccessToken(ctx, client, user, scope)
		})
		if err != nil || token != "" {
			return token, err
		}
	}
	return generateToken(ctx)
}

func (b *grantBase) generateRefreshToken(ctx context.Context, client *storage.Client, user *storage.User, scope string) (string, error) {
	if gen, ok := b.model.(storage.RefreshTokenGenerator); ok {
		token, err := call(ctx, b.inst, "generateRefreshToken", func(ctx context.Context) (string, error) {
			return gen.GenerateRefreshToken(ctx, client, user, scope)
		})
		if err != nil || token != "" {
			return token, err
		}
	}
	return generateToken(ctx)
}

func generateToken(ctx context.Context) (string, error) {
	token, err := security.GenerateToken(ctx)
	if err != nil {
		return "", oautherr.Server(err)
	}
	return token, nil
}

func (b *grantBase) accessTokenExpiresAt() *time.Time {
	return security.ExpiresAt(b.now(), b.accessTokenLifetime)
}

func (b *grantBase) refreshTokenExpiresAt() *time.Time {
	return security.ExpiresAt(b.now(), b.refreshTokenLifetime)
}

// extractScope returns the requested scope after checking its grammar.
func (b *grantBase) extractScope(req *GrantRequest) (string, error) {
	scope := req.Body("scope")
	if scope != "" && !validation.Scope(scope) {
		return "", oautherr.InvalidRequest("Invalid parameter: `scope`")
	}
	return scope, nil
}

// validateScope lets the model narrow or reject the scope. Without a
// ScopeValidator the scope is granted as requested.
func (b *grantBase) validateScope(ctx context.Context, user *storage.User, client *storage.Client, scope string) (string, error) {
	v, ok := b.model.(storage.ScopeValidator)
	if !ok {
		return scope, nil
	}

	type result struct {
		granted string
		ok      bool
	}
	res, err := call(ctx, b.inst, "validateScope", func(ctx context.Context) (result, error) {
		granted, ok, err := v.ValidateScope(ctx, user, client, scope)
		return result{granted, ok}, err
	})
	if err != nil {
		return "", err
	}
	if !res.ok {
		return "", oautherr.InvalidScope("Invalid scope: Requested scope is invalid")
	}
	return res.granted, nil
}

// issue generates and persists an access token and, when withRefresh is
// set, a refresh token. The access token is saved first.
func (b *grantBase) issue(ctx context.Context, client *storage.Client, user *storage.User, scope, refreshScope string, withRefresh bool) (*Token, error) {
	accessToken, err := b.generateAccessToken(ctx, client, user, scope)
	if err != nil {
		return nil, err
	}

	token := &Token{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: b.accessTokenExpiresAt(),
		Scope:                scope,
		Client:               client,
		User:                 user,
	}

	_, err = call(ctx, b.inst, "saveAccessToken", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, b.model.SaveAccessToken(ctx, &storage.AccessToken{
			Token:     token.AccessToken,
			ClientID:  client.ID,
			User:      user,
			UserID:    user.ID,
			ExpiresAt: token.AccessTokenExpiresAt,
			Scope:     scope,
		})
	})
	if err != nil {
		return nil, err
	}

	if !withRefresh {
		return token, nil
	}

	refresh, ok := b.model.(storage.RefreshTokenModel)
	if !ok {
		return nil, oautherr.Serverf("model cannot save refresh tokens")
	}

	refreshToken, err := b.generateRefreshToken(ctx, client, user, refreshScope)
	if err != nil {
		return nil, err
	}
	token.RefreshToken = refreshToken
	token.RefreshTokenExpiresAt = b.refreshTokenExpiresAt()

	_, err = call(ctx, b.inst, "saveRefreshToken", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, refresh.SaveRefreshToken(ctx, &storage.RefreshToken{
			Token:     token.RefreshToken,
			ClientID:  client.ID,
			User:      user,
			UserID:    user.ID,
			ExpiresAt: token.RefreshTokenExpiresAt,
			Scope:     refreshScope,
		})
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// ownerOf returns the user a stored code or token belongs to.
func ownerOf(user *storage.User, userID string) (*storage.User, bool) {
	if user != nil && user.ID != "" {
		return user, true
	}
	if userID == "" {
		return nil, false
	}
	return &storage.User{ID: userID}, true
}
