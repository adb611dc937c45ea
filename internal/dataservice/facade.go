// Package dataservice is the single entry point the HTTP layer talks to.
//
// The backend is chosen once at construction. In live mode reads go to the
// primary store and degrade to the fixture set when the store is unreachable
// (logged and counted, never silent). Writes always go to the primary store
// and their errors always reach the caller.
package dataservice

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/config"
	"github.com/sudo-init-do/studentmarket/internal/marketplace"
	"github.com/sudo-init-do/studentmarket/internal/messaging"
	"github.com/sudo-init-do/studentmarket/internal/metrics"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
	"github.com/sudo-init-do/studentmarket/internal/supabase"
)

// Auth is the hosted backend's session API. *supabase.Client implements it.
type Auth interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (supabase.AuthUser, error)
	SignIn(ctx context.Context, email, password string) (supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Resend(ctx context.Context, email string) error
	GetUser(ctx context.Context, accessToken string) (supabase.AuthUser, error)
}

// Options wires a Facade. Primary is required; Auth is required in live mode.
type Options struct {
	Mode     config.Mode
	Primary  store.Store
	Fixtures store.Reader
	Auth     Auth
	Cache    CategoryCache
	Engine   *marketplace.Service
	Messages *messaging.Service
	Metrics  *metrics.Metrics
	Logger   logrus.FieldLogger
}

// Facade embeds the marketplace engine, so every bid, order, gig and review
// transition is reachable from here and runs against the primary store.
type Facade struct {
	*marketplace.Service

	mode     config.Mode
	primary  store.Store
	fixtures store.Reader
	auth     Auth
	cache    CategoryCache
	messages *messaging.Service
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

// New validates the wiring and builds the facade. Misconfiguration fails
// here, not on the first call.
func New(o Options) (*Facade, error) {
	if o.Primary == nil {
		return nil, apperr.ErrConfig.With("data facade needs a primary store")
	}
	switch o.Mode {
	case config.ModeLive:
		if o.Auth == nil {
			return nil, apperr.ErrConfig.With("live mode needs an auth client")
		}
	case config.ModeFixture:
	default:
		return nil, apperr.ErrConfig.With("unknown backend mode %q", o.Mode)
	}

	f := &Facade{
		Service:  o.Engine,
		mode:     o.Mode,
		primary:  o.Primary,
		fixtures: o.Fixtures,
		auth:     o.Auth,
		cache:    o.Cache,
		messages: o.Messages,
		metrics:  o.Metrics,
		log:      o.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if f.log == nil {
		f.log = logrus.StandardLogger()
	}
	if f.Service == nil {
		f.Service = marketplace.NewService(o.Primary, marketplace.WithMetrics(o.Metrics), marketplace.WithLogger(f.log))
	}
	if f.messages == nil {
		f.messages = messaging.NewService(o.Primary, nil, f.log)
	}
	if f.mode == config.ModeLive && f.fixtures == nil {
		f.fixtures = memory.NewSeeded()
	}
	return f, nil
}

func (f *Facade) Mode() config.Mode { return f.mode }

// Ping checks the primary store, for readiness probes.
func (f *Facade) Ping(ctx context.Context) error { return f.primary.Ping(ctx) }

// read runs fn against the primary store. In live mode a transient failure
// reruns fn against the fixture set.
func read[T any](f *Facade, op string, fn func(store.Reader) (T, error)) (T, error) {
	v, err := fn(f.primary)
	if err == nil || f.mode != config.ModeLive || !apperr.IsTransient(err) {
		return v, err
	}
	f.log.WithFields(logrus.Fields{"op": op, "error": err.Error()}).Warn("backend unreachable, serving fixture data")
	f.metrics.Fallback(op)
	return fn(f.fixtures)
}
