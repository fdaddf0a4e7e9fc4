// Package service contains the business logic.
//
// It sits between the handler and repository layers. Services receive
// validated requests from handlers, talk to Postgres through narrow store
// interfaces, and hand slow work (email, contact sync) to the job queue.
// Third-party failures are logged with their cause and surface to clients
// as a generic 500.
//
// Services log through zerolog.Ctx, which carries the request-scoped
// logger the context middleware attaches.
package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
)

// enqueue queues a freshly built task. Failures are logged, not returned:
// by the time anything is queued the record is saved, and the person who
// filled in the form should still see a success.
func enqueue(ctx context.Context, queue job.Enqueuer, task *asynq.Task, err error) {
	if err == nil {
		_, err = queue.EnqueueContext(ctx, task)
	}
	if err != nil {
		ev := zerolog.Ctx(ctx).Error().Err(err)
		if task != nil {
			ev = ev.Str("task", task.Type())
		}
		ev.Msg("failed to enqueue task")
	}
}
