// Package memory is the in-process store behind fixture mode. It also backs
// the facade's read fallback when the live backend is unreachable.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// Store is a thread-safe in-memory store.Store. Transactions are serialized
// and operate on a private copy that replaces the published state on commit.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{st: newState()}
}

// NewSeeded returns a store loaded with the deterministic fixture set.
func NewSeeded() *Store {
	s := New()
	if err := s.Load(context.Background(), Fixtures()); err != nil {
		panic("memory: invalid fixture set: " + err.Error())
	}
	return s
}

// Load inserts every row of d in a single transaction.
func (s *Store) Load(ctx context.Context, d Dataset) error {
	return s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, c := range d.Categories {
			if err := tx.UpsertCategory(ctx, c); err != nil {
				return err
			}
		}
		for _, u := range d.Users {
			if err := tx.CreateUser(ctx, u); err != nil {
				return err
			}
		}
		for _, g := range d.Gigs {
			if err := tx.CreateGig(ctx, g); err != nil {
				return err
			}
		}
		for _, b := range d.Bids {
			if err := tx.CreateBid(ctx, b); err != nil {
				return err
			}
		}
		for _, o := range d.Orders {
			if err := tx.CreateOrder(ctx, o); err != nil {
				return err
			}
		}
		for _, r := range d.Reviews {
			if err := tx.CreateReview(ctx, r); err != nil {
				return err
			}
		}
		for _, n := range d.Notifications {
			if err := tx.CreateNotification(ctx, n); err != nil {
				return err
			}
		}
		for _, c := range d.Conversations {
			if err := tx.CreateConversation(ctx, c); err != nil {
				return err
			}
		}
		for _, m := range d.Messages {
			if err := tx.CreateMessage(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return apperr.ErrTransient.Wrap(err)
	}

	work := &tx{state: s.snapshot().clone()}
	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperr.ErrTransient.Wrap(err)
	}

	s.mu.Lock()
	s.st = work.state
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.snapshot().ListCategories(ctx)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.snapshot().GetUser(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.snapshot().GetUserByEmail(ctx, email)
}

func (s *Store) GetGig(ctx context.Context, id string) (models.Gig, error) {
	return s.snapshot().GetGig(ctx, id)
}

func (s *Store) ListGigs(ctx context.Context, f store.GigFilter) ([]models.Gig, error) {
	return s.snapshot().ListGigs(ctx, f)
}

func (s *Store) GetBid(ctx context.Context, id string) (models.Bid, error) {
	return s.snapshot().GetBid(ctx, id)
}

func (s *Store) ListBids(ctx context.Context, f store.BidFilter) ([]models.Bid, error) {
	return s.snapshot().ListBids(ctx, f)
}

func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return s.snapshot().GetOrder(ctx, id)
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	return s.snapshot().ListOrders(ctx, f)
}

func (s *Store) ListReviews(ctx context.Context, f store.ReviewFilter) ([]models.Review, error) {
	return s.snapshot().ListReviews(ctx, f)
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.snapshot().ListNotifications(ctx, userID)
}

func (s *Store) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	return s.snapshot().GetConversation(ctx, id)
}

func (s *Store) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.snapshot().ListConversations(ctx, userID)
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	return s.snapshot().ListMessages(ctx, conversationID)
}

func (s *Store) ListWalletTransactions(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	return s.snapshot().ListWalletTransactions(ctx, userID)
}

// =========================
// Transaction writes
// =========================

// tx enforces the same constraints the SQL schema does, so engine bugs
// surface identically in both modes.
type tx struct {
	*state
}

func duplicate(what, id string) error {
	return apperr.New(apperr.Internal, "duplicate", what+" "+id+" already exists")
}

func (t *tx) CreateUser(_ context.Context, u models.User) error {
	if _, ok := t.users[u.ID]; ok {
		return duplicate("user", u.ID)
	}
	for _, other := range t.users {
		if u.Email != "" && strings.EqualFold(other.Email, u.Email) {
			return apperr.ErrInvalidInput.With("email already registered")
		}
	}
	if err := checkUser(u); err != nil {
		return err
	}
	t.users[u.ID] = cloneUser(u)
	t.track(u.ID)
	return nil
}

func checkUser(u models.User) error {
	if u.WalletBalance < 0 {
		return apperr.ErrInsufficientFunds
	}
	if u.TotalEarnings < 0 {
		return apperr.New(apperr.Internal, "check_violation", "total_earnings cannot be negative")
	}
	return nil
}

func (t *tx) UpdateUser(_ context.Context, u models.User) error {
	if _, ok := t.users[u.ID]; !ok {
		return notFound("user", u.ID)
	}
	if err := checkUser(u); err != nil {
		return err
	}
	t.users[u.ID] = cloneUser(u)
	return nil
}

func (t *tx) UpsertCategory(_ context.Context, c models.Category) error {
	t.categories[c.ID] = c
	t.track(c.ID)
	return nil
}

func (t *tx) CreateGig(_ context.Context, g models.Gig) error {
	if _, ok := t.gigs[g.ID]; ok {
		return duplicate("gig", g.ID)
	}
	t.gigs[g.ID] = cloneGig(g)
	t.track(g.ID)
	return nil
}

func (t *tx) UpdateGig(_ context.Context, g models.Gig) error {
	if _, ok := t.gigs[g.ID]; !ok {
		return notFound("gig", g.ID)
	}
	t.gigs[g.ID] = cloneGig(g)
	return nil
}

func (t *tx) checkAccepted(b models.Bid) error {
	if b.Status != models.BidAccepted {
		return nil
	}
	for _, other := range t.bids {
		if other.ID != b.ID && other.GigID == b.GigID && other.Status == models.BidAccepted {
			return apperr.ErrAlreadyTerminal.With("gig %s already has an accepted bid", b.GigID)
		}
	}
	return nil
}

func (t *tx) CreateBid(_ context.Context, b models.Bid) error {
	if _, ok := t.bids[b.ID]; ok {
		return duplicate("bid", b.ID)
	}
	if err := t.checkAccepted(b); err != nil {
		return err
	}
	t.bids[b.ID] = b
	t.track(b.ID)
	return nil
}

func (t *tx) UpdateBid(_ context.Context, b models.Bid) error {
	if _, ok := t.bids[b.ID]; !ok {
		return notFound("bid", b.ID)
	}
	if err := t.checkAccepted(b); err != nil {
		return err
	}
	t.bids[b.ID] = b
	return nil
}

func checkOrder(o models.Order) error {
	if !o.Consistent() {
		return apperr.New(apperr.Internal, "check_violation",
			"order "+o.ID+" status "+string(o.Status)+" with payment "+string(o.PaymentStatus))
	}
	return nil
}

func (t *tx) CreateOrder(_ context.Context, o models.Order) error {
	if _, ok := t.orders[o.ID]; ok {
		return duplicate("order", o.ID)
	}
	if err := checkOrder(o); err != nil {
		return err
	}
	o.GigTitle = ""
	t.orders[o.ID] = cloneOrder(o)
	t.track(o.ID)
	return nil
}

func (t *tx) UpdateOrder(_ context.Context, o models.Order) error {
	if _, ok := t.orders[o.ID]; !ok {
		return notFound("order", o.ID)
	}
	if err := checkOrder(o); err != nil {
		return err
	}
	o.GigTitle = ""
	t.orders[o.ID] = cloneOrder(o)
	return nil
}

func (t *tx) CreateReview(_ context.Context, r models.Review) error {
	for _, other := range t.reviews {
		if other.OrderID == r.OrderID {
			return apperr.ErrAlreadyReviewed
		}
	}
	r.GigTitle = ""
	r.Reviewer = nil
	t.reviews[r.ID] = r
	t.track(r.ID)
	return nil
}

func (t *tx) CreateDispute(_ context.Context, d models.Dispute) error {
	if _, ok := t.disputes[d.ID]; ok {
		return duplicate("dispute", d.ID)
	}
	t.disputes[d.ID] = d
	t.track(d.ID)
	return nil
}

func (t *tx) CreateNotification(_ context.Context, n models.Notification) error {
	if _, ok := t.notifications[n.ID]; ok {
		return duplicate("notification", n.ID)
	}
	t.notifications[n.ID] = n
	t.track(n.ID)
	return nil
}

func (t *tx) MarkNotificationRead(_ context.Context, id, userID string) error {
	n, ok := t.notifications[id]
	if !ok || n.UserID != userID {
		return notFound("notification", id)
	}
	n.IsRead = true
	t.notifications[id] = n
	return nil
}

func (t *tx) CreateConversation(_ context.Context, c models.Conversation) error {
	if _, ok := t.conversations[c.ID]; ok {
		return duplicate("conversation", c.ID)
	}
	t.conversations[c.ID] = cloneConversation(c)
	t.track(c.ID)
	return nil
}

func (t *tx) UpdateConversation(_ context.Context, c models.Conversation) error {
	if _, ok := t.conversations[c.ID]; !ok {
		return notFound("conversation", c.ID)
	}
	t.conversations[c.ID] = cloneConversation(c)
	return nil
}

func (t *tx) CreateMessage(_ context.Context, m models.Message) error {
	if _, ok := t.conversations[m.ConversationID]; !ok {
		return notFound("conversation", m.ConversationID)
	}
	t.messages[m.ID] = m
	t.track(m.ID)
	return nil
}

func (t *tx) CreateWalletTransaction(_ context.Context, wt models.WalletTransaction) error {
	if _, ok := t.walletTxs[wt.ID]; ok {
		return duplicate("wallet transaction", wt.ID)
	}
	t.walletTxs[wt.ID] = wt
	t.track(wt.ID)
	return nil
}
