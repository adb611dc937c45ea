// Package marketplace holds the bid lifecycle engine, the order/escrow state
// machine, gig management and reviews. Every operation runs in a single store
// transaction; notifications are written in that transaction and handed to a
// Dispatcher after commit.
package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/metrics"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// Dispatcher delivers committed notifications out of band (email). It must
// not block on delivery and has no way to fail the transition.
type Dispatcher interface {
	Dispatch(ctx context.Context, notes []models.Notification)
}

type Service struct {
	store    store.Store
	dispatch Dispatcher
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

type Option func(*Service)

func WithDispatcher(d Dispatcher) Option { return func(s *Service) { s.dispatch = d } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithLogger(l logrus.FieldLogger) Option { return func(s *Service) { s.log = l } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   logrus.StandardLogger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// unit is the state of one running transaction.
type unit struct {
	tx    store.Tx
	at    time.Time
	notes []models.Notification
}

func (u *unit) notify(ctx context.Context, userID string, typ models.NotificationType, title, body, ref string) error {
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		Reference: ref,
		CreatedAt: u.at,
	}
	if err := u.tx.CreateNotification(ctx, n); err != nil {
		return err
	}
	u.notes = append(u.notes, n)
	return nil
}

// notifyParties tells both sides of an order about a status change.
func (u *unit) notifyParties(ctx context.Context, o models.Order, typ models.NotificationType, title, buyerBody, sellerBody string) error {
	if err := u.notify(ctx, o.BuyerID, typ, title, buyerBody, o.ID); err != nil {
		return err
	}
	return u.notify(ctx, o.SellerID, typ, title, sellerBody, o.ID)
}

// run executes fn in one transaction, records the outcome and dispatches the
// queued notifications once the transaction has committed.
func (s *Service) run(ctx context.Context, engine, op string, fn func(ctx context.Context, u *unit) error) error {
	var notes []models.Notification
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		u := &unit{tx: tx, at: s.now()}
		if err := fn(ctx, u); err != nil {
			return err
		}
		notes = u.notes
		return nil
	})

	outcome := "ok"
	if err != nil {
		outcome = apperr.CodeOf(err)
	}
	s.metrics.Transition(engine, op, outcome)

	entry := s.log.WithFields(logrus.Fields{"engine": engine, "op": op, "outcome": outcome})
	if err != nil {
		if apperr.KindOf(err) == apperr.Internal {
			entry.WithError(err).Error("transition failed")
		} else {
			entry.Debug("transition rejected")
		}
		return err
	}
	entry.Debug("transition committed")

	if s.dispatch != nil && len(notes) > 0 {
		s.dispatch.Dispatch(context.WithoutCancel(ctx), notes)
	}
	return nil
}
