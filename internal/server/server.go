// Package server defines the Server container that composes the app's
// shared dependencies and owns their lifecycle: config, logging, the
// Postgres pool, Redis, the job queue, the rate limiter, the third-party
// clients, the scheduler and the http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/database"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/billing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/scheduler"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/storage"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/token"
	loggerPkg "github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/logger"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/ratelimit"
)

const redisPingTimeout = 5 * time.Second

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database
	Redis         *redis.Client
	Job           *job.JobService

	// Limiter throttles the public form endpoints.
	Limiter ratelimit.Limiter

	Email *email.Client

	// Billing is nil when no Stripe key is configured.
	Billing *billing.Client

	Assets    storage.Store
	Downloads *token.DownloadSigner
	Admins    *token.SupabaseVerifier

	// Scheduler is set by the caller once repositories exist.
	Scheduler *scheduler.Scheduler

	httpServer *http.Server
}

// New connects to Postgres and Redis and builds the clients the services
// share. Job workers are not started here; see StartJobs.
//
// A Redis outage at startup is logged, not fatal, unless the rate limiter
// is configured to keep its state in Redis.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if loggerService != nil && loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		if cfg.RateLimit.Store == ratelimit.StoreRedis {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Error().Err(err).Msg("failed to connect to redis, continuing without background jobs")
	}

	limiter, err := ratelimit.New(cfg.RateLimit, redisClient)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	assets, err := storage.New(ctx, cfg.Assets)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize asset storage: %w", err)
	}

	var billingClient *billing.Client
	if cfg.Integration.BillingEnabled() {
		billingClient = billing.NewClient(cfg.Integration.StripeSecretKey, cfg.Integration.StripeWebhookSecret)
	} else {
		logger.Warn().Msg("stripe is not configured, signup is disabled")
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Job:           job.NewJobService(logger, cfg),
		Limiter:       limiter,
		Email:         email.NewClient(cfg, logger),
		Billing:       billingClient,
		Assets:        assets,
		Downloads:     token.NewDownloadSigner(cfg.Auth.DownloadTokenSecret, time.Duration(cfg.Auth.DownloadTokenTTL)*time.Hour),
		Admins:        token.NewSupabaseVerifier(cfg.Auth.SupabaseJWTSecret, cfg.Auth.AdminEmails),
	}

	return server, nil
}

// StartJobs registers the task handlers and starts the workers.
func (s *Server) StartJobs(leads job.LeadSyncMarker) error {
	s.Job.InitHandlers(s.Email, leads)
	return s.Job.Start()
}

// SetupHTTPServer configures the internal net/http server around handler.
// Config timeouts are whole seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server until it is shut down. It requires
// SetupHTTPServer to be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then stops the scheduler and job workers and closes Redis and the
// database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Scheduler != nil {
		s.Scheduler.Stop(ctx)
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if err := s.Redis.Close(); err != nil {
		s.Logger.Error().Err(err).Msg("failed to close redis client")
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
