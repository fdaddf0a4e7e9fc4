package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/utils"
)

// decode unmarshals a task payload. A payload that cannot be decoded will
// never succeed, so the task is not retried.
func decode(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

// run logs around a send and passes its error back to Asynq, which
// schedules the retry.
func (j *JobService) run(t *asynq.Task, to string, send func() error) error {
	log := j.logger.With().Str("type", t.Type()).Str("to", to).Logger()

	log.Info().Msg("processing email task")

	if err := send(); err != nil {
		log.Error().Err(err).Msg("failed to send email")
		return err
	}

	log.Info().Msg("sent email")
	return nil
}

func (j *JobService) handleContactNotificationTask(ctx context.Context, t *asynq.Task) error {
	var p email.ContactNotificationData
	if err := decode(t, &p); err != nil {
		return err
	}
	return j.run(t, "agency", func() error { return j.email.SendContactNotification(ctx, p) })
}

func (j *JobService) handleContactAutoreplyTask(ctx context.Context, t *asynq.Task) error {
	var p RecipientPayload[email.ContactAutoreplyData]
	if err := decode(t, &p); err != nil {
		return err
	}
	return j.run(t, p.To, func() error { return j.email.SendContactAutoreply(ctx, p.To, p.Data) })
}

func (j *JobService) handleLeadMagnetTask(ctx context.Context, t *asynq.Task) error {
	var p RecipientPayload[email.LeadMagnetData]
	if err := decode(t, &p); err != nil {
		return err
	}
	return j.run(t, p.To, func() error { return j.email.SendLeadMagnet(ctx, p.To, p.Data) })
}

func (j *JobService) handleWelcomeTask(ctx context.Context, t *asynq.Task) error {
	var p RecipientPayload[email.WelcomeData]
	if err := decode(t, &p); err != nil {
		return err
	}
	return j.run(t, p.To, func() error { return j.email.SendWelcome(ctx, p.To, p.Data) })
}

func (j *JobService) handlePaymentFailedTask(ctx context.Context, t *asynq.Task) error {
	var p email.PaymentFailedData
	if err := decode(t, &p); err != nil {
		return err
	}
	return j.run(t, "agency", func() error { return j.email.SendPaymentFailed(ctx, p) })
}

func (j *JobService) handleDailyDigestTask(ctx context.Context, t *asynq.Task) error {
	var p email.DailyDigestData
	if err := decode(t, &p); err != nil {
		return err
	}
	return j.run(t, "agency", func() error { return j.email.SendDailyDigest(ctx, p) })
}

// handleSyncContactTask pushes a lead into the Brevo list. Without a Brevo
// key there is nothing to do and the task succeeds.
func (j *JobService) handleSyncContactTask(ctx context.Context, t *asynq.Task) error {
	var p SyncContactPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	log := j.logger.With().Str("type", t.Type()).Str("lead_id", p.LeadID.String()).Logger()

	attributes := map[string]any{"LEAD_MAGNET": p.Magnet}
	if first := utils.FirstName(p.Name); first != "" {
		attributes["FIRSTNAME"] = first
	}

	err := j.email.SyncContact(ctx, email.Contact{Email: p.Email, Attributes: attributes})
	if errors.Is(err, email.ErrContactSyncDisabled) {
		log.Debug().Msg("brevo contact sync disabled, skipping")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to sync contact to brevo")
		return err
	}

	if err := j.leads.MarkSynced(ctx, p.LeadID); err != nil {
		log.Error().Err(err).Msg("failed to mark lead synced")
		return err
	}

	log.Info().Msg("synced contact to brevo")
	return nil
}
