package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/metrics"
)

// Worker runs the asynq server that delivers notification emails.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	mailer Mailer
	m      *metrics.Metrics
	log    logrus.FieldLogger
}

func NewWorker(opt asynq.RedisConnOpt, mailer Mailer, m *metrics.Metrics, log logrus.FieldLogger) *Worker {
	w := &Worker{
		mailer: mailer,
		m:      m,
		log:    log,
	}
	w.mux = asynq.NewServeMux()
	w.mux.HandleFunc(TaskNotificationEmail, w.handleNotificationEmail)

	w.server = asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueEmails: 10,
		},
		Logger: log.WithField("component", "asynq"),
	})
	return w
}

// Start begins processing in the background.
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start email worker: %w", err)
	}
	w.log.Info("email worker started")
	return nil
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleNotificationEmail(ctx context.Context, t *asynq.Task) error {
	var p NotificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// malformed payloads never succeed on retry
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	fields := logrus.Fields{"notification_id": p.NotificationID, "type": p.Type, "to": p.Email}
	if err := w.mailer.Send(ctx, p.Envelope); err != nil {
		w.m.Email(false)
		w.log.WithFields(fields).WithField("error", err.Error()).Error("notification email failed")
		return err
	}
	w.m.Email(true)
	w.log.WithFields(fields).Info("notification email sent")
	return nil
}
