package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// Enqueuer is the part of *asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher turns committed notifications into email tasks. With no
// Enqueuer it only logs, which is how fixture mode and tests run.
type Dispatcher struct {
	client Enqueuer
	users  store.Reader
	appURL string
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewDispatcher(client Enqueuer, users store.Reader, appURL string, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		client: client,
		users:  users,
		appURL: strings.TrimRight(appURL, "/"),
		log:    log,
		now:    time.Now,
	}
}

// Dispatch enqueues one email per notification whose recipient has an
// address. Failures are logged and never surface to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, notes []models.Notification) {
	for _, n := range notes {
		fields := logrus.Fields{"notification_id": n.ID, "type": n.Type, "user_id": n.UserID}

		u, err := d.users.GetUser(ctx, n.UserID)
		if err != nil {
			d.log.WithFields(fields).WithField("error", err.Error()).Warn("notification recipient lookup failed")
			continue
		}
		if u.Email == "" {
			continue
		}

		task, err := d.task(n, u)
		if err != nil {
			d.log.WithFields(fields).WithField("error", err.Error()).Warn("build email task")
			continue
		}
		if d.client == nil {
			d.log.WithFields(fields).Debug("email queue disabled; notification kept in-app only")
			continue
		}
		if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(QueueEmails), asynq.MaxRetry(5)); err != nil {
			d.log.WithFields(fields).WithField("error", err.Error()).Warn("enqueue notification email")
			continue
		}
		d.log.WithFields(fields).Debug("notification email enqueued")
	}
}

func (d *Dispatcher) task(n models.Notification, u models.User) (*asynq.Task, error) {
	body := fmt.Sprintf("Hi %s,\n\n%s\n\nOpen StudentMarket: %s", firstName(u.FullName), n.Body, d.appURL)
	payload := NotificationEmailPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Email:          u.Email,
		Envelope: EmailEnvelope{
			To:      u.Email,
			Subject: n.Title,
			Body:    body,
		},
		SentAt: d.now(),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, b), nil
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return "there"
}
