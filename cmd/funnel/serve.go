package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/database"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/handler"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/scheduler"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/logger"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/ratelimit"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/repository"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/router"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/service"
)

const DefaultContextTimeout = 30

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, the job workers and the scheduler",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if cfg.Primary.Env != "local" {
		if err := database.Migrate(cmd.Context(), &log, cfg, 0); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)

	if err := srv.StartJobs(repos.Leads); err != nil {
		log.Fatal().Err(err).Msg("failed to start job workers")
	}

	deps := scheduler.Deps{
		Trials:      repos.Subscriptions,
		Stats:       repos.Stats,
		Submissions: repos.Submissions,
		Queue:       srv.Job.Client,
	}
	if mem, ok := srv.Limiter.(*ratelimit.MemoryLimiter); ok {
		deps.Pruner = mem
	}
	sched, err := scheduler.New(&log, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	srv.Scheduler = sched
	sched.Start()

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
