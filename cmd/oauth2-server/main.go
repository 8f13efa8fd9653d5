// Command oauth2-server runs the OAuth 2.0 token, revocation and discovery
// endpoints on top of a configurable storage backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	oauth "github.com/giantswarm/oauth2-engine"
	"github.com/giantswarm/oauth2-engine/cmd/oauth2-server/internal/config"
	"github.com/giantswarm/oauth2-engine/cmd/oauth2-server/internal/logging"
	"github.com/giantswarm/oauth2-engine/instrumentation"
	"github.com/giantswarm/oauth2-engine/security"
	"github.com/giantswarm/oauth2-engine/server"
	"github.com/giantswarm/oauth2-engine/storage/seed"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	inst, err := instrumentation.New(instrumentation.Config{
		ServiceName:          "oauth2-server",
		ServiceVersion:       Version,
		Enabled:              cfg.MetricsAddr != "",
		MetricsExporter:      instrumentation.MetricsExporterPrometheus,
		PrometheusRegisterer: registry,
		LogClientIPs:         cfg.LogClientIPs,
	})
	if err != nil {
		return fmt.Errorf("initializing instrumentation: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg, logger, inst)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(ctx, cfg.SeedFile, store)
		if err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
		logger.Info("seeded store", "path", cfg.SeedFile, "clients", len(f.Clients), "users", len(f.Users))
	}

	srv, err := oauth.NewServer(store, serverConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("creating oauth server: %w", err)
	}
	srv.SetInstrumentation(inst)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down oauth server", "error", err)
		}
	}()

	handler := oauth.NewHandler(srv, logger)

	servers := []*http.Server{{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, hs := range servers {
		g.Go(func() error {
			logger.Info("listening", "addr", hs.Addr)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s: %w", hs.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, hs := range servers {
			if err := hs.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %s: %w", hs.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func serverConfig(cfg *config.Config) *oauth.Config {
	return &oauth.Config{
		Issuer: cfg.Issuer,
		Server: server.Config{
			AccessTokenLifetime:        cfg.AccessTokenLifetime,
			RefreshTokenLifetime:       cfg.RefreshTokenLifetime,
			Grants:                     cfg.Grants,
			AlwaysIssueNewRefreshToken: cfg.AlwaysIssueNewRefreshToken,
			Debug:                      cfg.Debug,
			InvalidTokenStatus:         cfg.InvalidTokenStatus,
			Realm:                      cfg.Realm,
		},
		RateLimit: oauth.RateLimitConfig{
			Token: security.RateLimitConfig{
				RequestsPerSecond: cfg.TokenRateLimit,
				Burst:             cfg.TokenRateBurst,
				MaxEntries:        cfg.RateLimitMaxEntries,
			},
			Resource: security.RateLimitConfig{
				RequestsPerSecond: cfg.ResourceRateLimit,
				Burst:             cfg.ResourceRateBurst,
				MaxEntries:        cfg.RateLimitMaxEntries,
			},
		},
		Security: oauth.SecurityConfig{
			Proxy: security.ProxyPolicy{
				Trust:       cfg.TrustProxy,
				TrustedHops: cfg.TrustedProxyHops,
			},
			EnableAuditLogging: cfg.EnableAuditLogging,
		},
	}
}

func newRouter(h *oauth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.RequestIDMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	h.OAuthRoutes(r)
	h.WellKnownRoutes(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Authorise)
		r.With(h.RequireScope("profile")).Get("/userinfo", serveUserInfo)
	})
	return r
}

type userInfo struct {
	Subject    string         `json:"sub"`
	ClientID   string         `json:"client_id"`
	Scope      string         `json:"scope,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func serveUserInfo(w http.ResponseWriter, r *http.Request) {
	auth, ok := oauth.AuthorisationFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorised", http.StatusUnauthorized)
		return
	}

	info := userInfo{
		ClientID: auth.Token.ClientID,
		Scope:    auth.Token.Scope,
	}
	if auth.User != nil {
		info.Subject = auth.User.ID
		info.Attributes = auth.User.Attributes
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		slog.Default().Debug("writing userinfo", "error", err)
	}
}
