package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/storage"
)

// Server is the OAuth 2.0 engine. It holds no per-request state: all
// entities live in the model.
type Server struct {
	model  storage.Model
	grants map[string]Grant
	inst   *instrumentation.Instrumentation
	now    func() time.Time

	Auditor *security.Auditor
	Logger  *slog.Logger
	Config  *Config
}

// New creates a server backed by model. The configuration is validated
// against the model's capabilities.
func New(model storage.Model, config *Config, logger *slog.Logger) (*Server, error) {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := *config
	cfg.applyDefaults()
	if err := cfg.Validate(model); err != nil {
		return nil, err
	}

	srv := &Server{
		model:  model,
		inst:   instrumentation.NewNoop(),
		now:    time.Now,
		Logger: logger,
		Config: &cfg,
	}
	if err := srv.initGrants(); err != nil {
		return nil, err
	}

	logger.Debug("OAuth server initialized",
		"grants", cfg.Grants,
		"access_token_lifetime", cfg.AccessTokenLifetime,
		"refresh_token_lifetime", cfg.RefreshTokenLifetime)

	return srv, nil
}

func (s *Server) initGrants() error {
	opts := GrantOptions{
		Model:                      s.model,
		AccessTokenLifetime:        s.Config.AccessTokenLifetime,
		RefreshTokenLifetime:       s.Config.RefreshTokenLifetime,
		IssueRefreshToken:          s.Config.GrantEnabled(GrantTypeRefreshToken),
		AlwaysIssueNewRefreshToken: s.Config.AlwaysIssueNewRefreshToken,
		Now:                        s.now,
		Instrumentation:            s.inst,
		Logger:                     s.Logger,
	}

	grants := make(map[string]Grant, len(s.Config.Grants))
	for _, name := range s.Config.Grants {
		var (
			g   Grant
			err error
		)
		switch name {
		case GrantTypeAuthorizationCode:
			g, err = NewAuthorizationCodeGrant(opts)
		case GrantTypePassword:
			g, err = NewPasswordGrant(opts)
		case GrantTypeClientCredentials:
			g, err = NewClientCredentialsGrant(opts)
		case GrantTypeRefreshToken:
			g, err = NewRefreshTokenGrant(opts)
		default:
			if IsExtendedGrantType(name) {
				g, err = NewExtendedGrant(name, opts)
			} else {
				err = oautherr.InvalidArgument("unsupported grant type " + name)
			}
		}
		if err != nil {
			return err
		}
		grants[name] = g
	}

	s.grants = grants
	return nil
}

// SetAuditor sets the security auditor
func (s *Server) SetAuditor(aud *security.Auditor) {
	s.Auditor = aud
}

// SetInstrumentation enables tracing and metrics for grants and model calls.
func (s *Server) SetInstrumentation(inst *instrumentation.Instrumentation) {
	if inst == nil {
		inst = instrumentation.NewNoop()
	}
	s.inst = inst
	_ = s.initGrants() // validated in New
}

// SetClock replaces the time source. Intended for tests.
func (s *Server) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
	_ = s.initGrants() // validated in New
}

// Instrumentation returns the server's instrumentation.
func (s *Server) Instrumentation() *instrumentation.Instrumentation {
	return s.inst
}

// Model returns the backing model.
func (s *Server) Model() storage.Model {
	return s.model
}

// logFailure logs a failed request. Client errors are only logged above
// Debug level in debug mode.
func (s *Server) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	logger := security.Logger(ctx, s.Logger)
	oe := oautherr.From(err)
	attrs = append(attrs, "error", oe.Code(), "description", oe.Description)
	if oe.Cause != nil {
		attrs = append(attrs, "cause", oe.Cause)
	}

	switch {
	case oe.Kind == oautherr.KindServerError:
		logger.Error(msg, attrs...)
	case s.Config.Debug:
		logger.Info(msg, attrs...)
	default:
		logger.Debug(msg, attrs...)
	}
}
