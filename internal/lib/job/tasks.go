package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
)

// Task type names stored in Redis. Asynq routes on these strings.
const (
	TaskContactNotification = "email:contact_notification"
	TaskContactAutoreply    = "email:contact_autoreply"
	TaskLeadMagnet          = "email:lead_magnet"
	TaskWelcome             = "email:welcome"
	TaskPaymentFailed       = "email:payment_failed"
	TaskDailyDigest         = "email:daily_digest"
	TaskSyncContact         = "brevo:sync_contact"
)

const (
	taskMaxRetry = 3
	taskTimeout  = 30 * time.Second
)

// RecipientPayload wraps template data with the address it goes to.
type RecipientPayload[T any] struct {
	To   string `json:"to"`
	Data T      `json:"data"`
}

type SyncContactPayload struct {
	LeadID uuid.UUID `json:"leadId"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
	Magnet string    `json:"magnet"`
}

func newTask(taskType, queue string, payload any) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		taskType,
		b,
		asynq.MaxRetry(taskMaxRetry),
		asynq.Queue(queue),
		asynq.Timeout(taskTimeout),
	), nil
}

// NewContactNotificationTask goes on the critical queue; the agency wants
// to hear about inquiries right away.
func NewContactNotificationTask(data email.ContactNotificationData) (*asynq.Task, error) {
	return newTask(TaskContactNotification, QueueCritical, data)
}

func NewContactAutoreplyTask(to string, data email.ContactAutoreplyData) (*asynq.Task, error) {
	return newTask(TaskContactAutoreply, QueueDefault, RecipientPayload[email.ContactAutoreplyData]{To: to, Data: data})
}

func NewLeadMagnetTask(to string, data email.LeadMagnetData) (*asynq.Task, error) {
	return newTask(TaskLeadMagnet, QueueCritical, RecipientPayload[email.LeadMagnetData]{To: to, Data: data})
}

func NewWelcomeTask(to string, data email.WelcomeData) (*asynq.Task, error) {
	return newTask(TaskWelcome, QueueDefault, RecipientPayload[email.WelcomeData]{To: to, Data: data})
}

func NewPaymentFailedTask(data email.PaymentFailedData) (*asynq.Task, error) {
	return newTask(TaskPaymentFailed, QueueCritical, data)
}

func NewDailyDigestTask(data email.DailyDigestData) (*asynq.Task, error) {
	return newTask(TaskDailyDigest, QueueLow, data)
}

func NewSyncContactTask(p SyncContactPayload) (*asynq.Task, error) {
	return newTask(TaskSyncContact, QueueLow, p)
}
