package oauth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/oautherr"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/server"
	"github.com/giantswarm/oauth2-engine/storage"
)

// Server bundles the OAuth engine with the infrastructure the HTTP layer
// needs: rate limiters, the audit trail and instrumentation.
type Server struct {
	Engine              *server.Server
	Auditor             *security.Auditor
	Instrumentation     *instrumentation.Instrumentation
	TokenRateLimiter    *security.RateLimiter
	ResourceRateLimiter *security.RateLimiter
	Logger              *slog.Logger
	Config              *Config
}

// NewServer creates a Server backed by model. The model must be able to
// look up access tokens since the handler protects resources.
func NewServer(model storage.Model, config *Config, logger *slog.Logger) (*Server, error) {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	engine, err := server.New(model, &config.Server, logger)
	if err != nil {
		return nil, err
	}
	if _, ok := model.(storage.AccessTokenGetter); !ok {
		return nil, oautherr.InvalidArgument("Invalid argument: model does not implement `getAccessToken()`")
	}
	if engine.Config.PassthroughErrors && config.ErrorHandler == nil {
		return nil, oautherr.InvalidArgument("Missing parameter: `errorHandler`")
	}

	inst := instrumentation.NewNoop()
	if config.Instrumentation.Enabled {
		inst, err = instrumentation.New(config.Instrumentation)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize instrumentation: %w", err)
		}
	}
	engine.SetInstrumentation(inst)

	auditor := security.NewAuditor(logger, config.Security.EnableAuditLogging)
	engine.SetAuditor(auditor)

	s := &Server{
		Engine:          engine,
		Auditor:         auditor,
		Instrumentation: inst,
		Logger:          logger,
		Config:          config,
	}
	if rateLimitEnabled(config.RateLimit.Token) {
		s.TokenRateLimiter = security.NewRateLimiter(config.RateLimit.Token, logger)
	}
	if rateLimitEnabled(config.RateLimit.Resource) {
		s.ResourceRateLimiter = security.NewRateLimiter(config.RateLimit.Resource, logger)
	}

	logger.Info("OAuth server created",
		"issuer", config.Issuer,
		"grants", engine.Config.Grants,
		"token_rate_limit", s.TokenRateLimiter != nil,
		"resource_rate_limit", s.ResourceRateLimiter != nil,
		"audit_logging", config.Security.EnableAuditLogging)

	return s, nil
}

// SetInstrumentation replaces the server's instrumentation, for callers
// that share one instance with their storage backend. Call it before
// NewHandler. The server takes over shutting it down.
func (s *Server) SetInstrumentation(inst *instrumentation.Instrumentation) {
	if inst == nil {
		inst = instrumentation.NewNoop()
	}
	s.Instrumentation = inst
	s.Engine.SetInstrumentation(inst)
}

// Shutdown stops the rate limiters and flushes instrumentation.
func (s *Server) Shutdown(ctx context.Context) error {
	s.TokenRateLimiter.Stop()
	s.ResourceRateLimiter.Stop()

	if err := s.Instrumentation.Shutdown(ctx); err != nil {
		return fmt.Errorf("instrumentation shutdown: %w", err)
	}
	return nil
}
