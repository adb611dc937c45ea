package alerts

import (
	"time"

	"github.com/sudo-init-do/studentmarket/internal/models"
)

// Task type constants
const (
	TaskNotificationEmail = "email:notification"
)

// QueueEmails is the asynq queue every email task is enqueued on.
const QueueEmails = "emails"

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotificationEmailPayload carries one committed notification to the worker.
type NotificationEmailPayload struct {
	NotificationID string                  `json:"notification_id"`
	UserID         string                  `json:"user_id"`
	Type           models.NotificationType `json:"type"`
	Email          string                  `json:"email"`
	Envelope       EmailEnvelope           `json:"envelope"`
	SentAt         time.Time               `json:"sent_at"`
}
