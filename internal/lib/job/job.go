// Package job runs the funnel's background work on Asynq.
//
// Request handlers enqueue tasks (emails, Brevo contact sync) so a slow or
// failing provider never delays a form response. Workers retry failed tasks
// with Asynq's backoff.
package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Enqueuer is the producer side of the queue. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LeadSyncMarker records that a lead reached the Brevo list.
type LeadSyncMarker interface {
	MarkSynced(ctx context.Context, id uuid.UUID) error
}

// JobService holds the Asynq client (enqueue) and server (workers).
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger

	email *email.Client
	leads LeadSyncMarker
}

// RedisOpt builds the Asynq connection options from the Redis config.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := RedisOpt(cfg.Redis)

	client := asynq.NewClient(redisOpt)

	// Of ten workers roughly six serve critical, three default and one low.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// InitHandlers sets the dependencies the task handlers use. It must run
// before Start.
func (j *JobService) InitHandlers(emailClient *email.Client, leads LeadSyncMarker) {
	j.email = emailClient
	j.leads = leads
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskContactNotification, j.handleContactNotificationTask)
	mux.HandleFunc(TaskContactAutoreply, j.handleContactAutoreplyTask)
	mux.HandleFunc(TaskLeadMagnet, j.handleLeadMagnetTask)
	mux.HandleFunc(TaskWelcome, j.handleWelcomeTask)
	mux.HandleFunc(TaskPaymentFailed, j.handlePaymentFailedTask)
	mux.HandleFunc(TaskDailyDigest, j.handleDailyDigestTask)
	mux.HandleFunc(TaskSyncContact, j.handleSyncContactTask)
	return mux
}

// Start registers the handlers and starts the workers. asynq.Server.Start
// returns once the workers are running.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return err
	}

	return nil
}

// Stop waits for in-flight tasks and closes the client connection.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// asynqLogger routes Asynq's internal logs through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
