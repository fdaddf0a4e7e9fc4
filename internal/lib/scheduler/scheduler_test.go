package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

type fakeTrials struct {
	calledAt time.Time
	expired  int64
	err      error
}

func (f *fakeTrials) ExpireTrials(_ context.Context, now time.Time) (int64, error) {
	f.calledAt = now
	return f.expired, f.err
}

type fakeStats struct{}

func (fakeStats) Collect(_ context.Context, now time.Time) (*model.Stats, error) {
	return &model.Stats{Leads: 4, LeadDownloads: 9, MonthlyRevenueCents: 15688, GeneratedAt: now}, nil
}

var company = "Reyes Auto"

type fakeSubmissions struct {
	since time.Time
}

func (f *fakeSubmissions) ListSince(_ context.Context, since time.Time) ([]model.Submission, error) {
	f.since = since
	return []model.Submission{
		{Name: "Jane", Email: "jane@example.com", Service: "seo", Status: model.SubmissionNew},
		{Name: "Omar", Email: "omar@reyesauto.com", Company: &company, Service: "paid-ads", Status: model.SubmissionBooked},
	}, nil
}

// fakeQueue rejects a task id it has already seen, like asynq does while
// the task is retained.
type fakeQueue struct {
	tasks     []*asynq.Task
	ids       []string
	retention time.Duration
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	var id string
	for _, opt := range opts {
		switch opt.Type() {
		case asynq.TaskIDOpt:
			id = opt.Value().(string)
		case asynq.RetentionOpt:
			f.retention = opt.Value().(time.Duration)
		}
	}
	for _, seen := range f.ids {
		if id != "" && id == seen {
			return nil, asynq.ErrTaskIDConflict
		}
	}
	f.ids = append(f.ids, id)
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: id}, nil
}

type fakePruner struct{ calls int }

func (f *fakePruner) Prune() int {
	f.calls++
	return 2
}

var fixedNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, deps Deps) *Scheduler {
	logger := zerolog.Nop()
	s, err := New(&logger, deps)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewRegistersJobs(t *testing.T) {
	withPruner := newTestScheduler(t, Deps{Pruner: &fakePruner{}})
	assert.Equal(t, 3, withPruner.Entries())

	withoutPruner := newTestScheduler(t, Deps{})
	assert.Equal(t, 2, withoutPruner.Entries())
}

func TestSweepTrials(t *testing.T) {
	trials := &fakeTrials{expired: 3}
	s := newTestScheduler(t, Deps{Trials: trials})

	require.NoError(t, s.SweepTrials(context.Background()))
	assert.Equal(t, fixedNow, trials.calledAt)

	trials.err = errors.New("db down")
	assert.Error(t, s.SweepTrials(context.Background()))
}

func TestPruneLimiter(t *testing.T) {
	pruner := &fakePruner{}
	s := newTestScheduler(t, Deps{Pruner: pruner})

	require.NoError(t, s.PruneLimiter(context.Background()))
	assert.Equal(t, 1, pruner.calls)
}

func TestQueueDailyDigest(t *testing.T) {
	queue := &fakeQueue{}
	subs := &fakeSubmissions{}
	s := newTestScheduler(t, Deps{Stats: fakeStats{}, Submissions: subs, Queue: queue})

	require.NoError(t, s.QueueDailyDigest(context.Background()))
	assert.Equal(t, fixedNow.Add(-24*time.Hour), subs.since)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, job.TaskDailyDigest, queue.tasks[0].Type())

	var data email.DailyDigestData
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &data))
	assert.Equal(t, "2026-10-15", data.Date)
	assert.Equal(t, 4, data.Leads)
	assert.Equal(t, int64(15688), data.MonthlyRevenueCents)
	require.Len(t, data.Submissions, 2)
	assert.Equal(t, "new", data.Submissions[0].Status)
	assert.Empty(t, data.Submissions[0].Company)
	assert.Equal(t, "Reyes Auto", data.Submissions[1].Company)
}

func TestQueueDailyDigestOncePerDayAcrossInstances(t *testing.T) {
	queue := &fakeQueue{}
	deps := Deps{Stats: fakeStats{}, Submissions: &fakeSubmissions{}, Queue: queue}
	first := newTestScheduler(t, deps)
	second := newTestScheduler(t, deps)

	require.NoError(t, first.QueueDailyDigest(context.Background()))
	require.NoError(t, second.QueueDailyDigest(context.Background()))

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, []string{DigestTaskID("2026-10-15")}, queue.ids)
	assert.GreaterOrEqual(t, queue.retention, 24*time.Hour)

	second.now = func() time.Time { return fixedNow.Add(24 * time.Hour) }
	require.NoError(t, second.QueueDailyDigest(context.Background()))
	assert.Len(t, queue.tasks, 2)
	assert.Equal(t, DigestTaskID("2026-10-16"), queue.ids[1])
}

func TestQueueDailyDigestReturnsQueueErrors(t *testing.T) {
	deps := Deps{Stats: fakeStats{}, Submissions: &fakeSubmissions{}, Queue: failingQueue{}}
	s := newTestScheduler(t, deps)

	assert.Error(t, s.QueueDailyDigest(context.Background()))
}

type failingQueue struct{}

func (failingQueue) EnqueueContext(context.Context, *asynq.Task, ...asynq.Option) (*asynq.TaskInfo, error) {
	return nil, errors.New("redis: connection refused")
}

func TestStopReturnsWhenIdle(t *testing.T) {
	s := newTestScheduler(t, Deps{})
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
