// Package lib groups the integrations that do not belong to a single layer:
// billing (Stripe), email (Resend and Brevo), the asynq job queue, the cron
// scheduler, Calendly webhooks, lead magnet storage, signed tokens and small
// shared utilities.
package lib
