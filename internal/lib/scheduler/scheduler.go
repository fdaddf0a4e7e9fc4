// Package scheduler runs the funnel's periodic maintenance with robfig/cron.
//
// Jobs:
//   - hourly: lapsed free trials move to trial_expired
//   - every ten minutes: expired in-memory rate limit windows are dropped
//   - daily at 08:00: the agency digest is queued
//
// Every instance runs the same schedule. The trial sweep is an idempotent
// UPDATE; the digest is queued under a per-day task id so only the first
// instance to fire gets it enqueued.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/utils"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

const (
	SpecTrialSweep   = "@hourly"
	SpecLimiterPrune = "@every 10m"
	SpecDailyDigest  = "0 8 * * *"

	jobTimeout = time.Minute

	// digestRetention keeps a finished digest task, and with it its id,
	// until the next day's run.
	digestRetention = 25 * time.Hour
)

type TrialExpirer interface {
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
}

type StatsCollector interface {
	Collect(ctx context.Context, now time.Time) (*model.Stats, error)
}

type SubmissionLister interface {
	ListSince(ctx context.Context, since time.Time) ([]model.Submission, error)
}

// Pruner is implemented by the in-memory rate limiter.
type Pruner interface {
	Prune() int
}

// Deps are the collaborators the jobs need. Pruner may be nil when the
// limiter keeps its state in Redis.
type Deps struct {
	Trials      TrialExpirer
	Stats       StatsCollector
	Submissions SubmissionLister
	Queue       job.Enqueuer
	Pruner      Pruner
}

type entry struct {
	spec string
	name string
	run  func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	deps   Deps
	logger zerolog.Logger
	now    func() time.Time
}

// New registers every job. Nothing runs until Start.
func New(logger *zerolog.Logger, deps Deps) (*Scheduler, error) {
	l := logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: l}

	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		deps:   deps,
		logger: l,
		now:    time.Now,
	}

	jobs := []entry{
		{SpecTrialSweep, "trial_sweep", s.SweepTrials},
		{SpecDailyDigest, "daily_digest", s.QueueDailyDigest},
	}
	if deps.Pruner != nil {
		jobs = append(jobs, entry{SpecLimiterPrune, "limiter_prune", s.PruneLimiter})
	}

	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, s.wrap(j.name, j.run)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			return
		}
		s.logger.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("scheduled job finished")
	}
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", s.Entries()).Msg("starting scheduler")
	s.cron.Start()
}

// Stop stops the schedule and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info().Msg("stopping scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) SweepTrials(ctx context.Context) error {
	n, err := s.deps.Trials.ExpireTrials(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info().Int64("expired", n).Msg("expired lapsed trials")
	}
	return nil
}

func (s *Scheduler) PruneLimiter(context.Context) error {
	if n := s.deps.Pruner.Prune(); n > 0 {
		s.logger.Debug().Int("pruned", n).Msg("pruned rate limit windows")
	}
	return nil
}

// QueueDailyDigest summarises the last 24 hours and queues the email. A
// digest already queued for the same date is not queued again.
func (s *Scheduler) QueueDailyDigest(ctx context.Context) error {
	now := s.now()

	stats, err := s.deps.Stats.Collect(ctx, now)
	if err != nil {
		return err
	}

	subs, err := s.deps.Submissions.ListSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return err
	}

	data := email.DailyDigestData{
		Date:                now.Format("2006-01-02"),
		Leads:               stats.Leads,
		LeadDownloads:       stats.LeadDownloads,
		MonthlyRevenueCents: stats.MonthlyRevenueCents,
	}
	for _, sub := range subs {
		data.Submissions = append(data.Submissions, email.DigestSubmission{
			Name:    sub.Name,
			Email:   sub.Email,
			Company: utils.Deref(sub.Company),
			Service: sub.Service,
			Status:  string(sub.Status),
		})
	}

	task, err := job.NewDailyDigestTask(data)
	if err != nil {
		return err
	}

	_, err = s.deps.Queue.EnqueueContext(ctx, task,
		asynq.TaskID(DigestTaskID(data.Date)),
		asynq.Retention(digestRetention),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Debug().Str("date", data.Date).Msg("daily digest already queued")
		return nil
	}
	return err
}

// DigestTaskID is the queue id of the digest for date (YYYY-MM-DD).
func DigestTaskID(date string) string {
	return job.TaskDailyDigest + ":" + date
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
