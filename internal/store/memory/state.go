package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// state is one version of the data set. A published state is never mutated;
// transactions work on a clone and publish it on commit.
type state struct {
	next int64
	seq  map[string]int64

	users         map[string]models.User
	categories    map[string]models.Category
	gigs          map[string]models.Gig
	bids          map[string]models.Bid
	orders        map[string]models.Order
	reviews       map[string]models.Review
	disputes      map[string]models.Dispute
	notifications map[string]models.Notification
	conversations map[string]models.Conversation
	messages      map[string]models.Message
	walletTxs     map[string]models.WalletTransaction
}

func newState() *state {
	return &state{
		seq:           map[string]int64{},
		users:         map[string]models.User{},
		categories:    map[string]models.Category{},
		gigs:          map[string]models.Gig{},
		bids:          map[string]models.Bid{},
		orders:        map[string]models.Order{},
		reviews:       map[string]models.Review{},
		disputes:      map[string]models.Dispute{},
		notifications: map[string]models.Notification{},
		conversations: map[string]models.Conversation{},
		messages:      map[string]models.Message{},
		walletTxs:     map[string]models.WalletTransaction{},
	}
}

func cloneMap[V any](m map[string]V, cp func(V) V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

func same[V any](v V) V { return v }

func (s *state) clone() *state {
	return &state{
		next:          s.next,
		seq:           cloneMap(s.seq, same[int64]),
		users:         cloneMap(s.users, cloneUser),
		categories:    cloneMap(s.categories, same[models.Category]),
		gigs:          cloneMap(s.gigs, cloneGig),
		bids:          cloneMap(s.bids, same[models.Bid]),
		orders:        cloneMap(s.orders, cloneOrder),
		reviews:       cloneMap(s.reviews, same[models.Review]),
		disputes:      cloneMap(s.disputes, same[models.Dispute]),
		notifications: cloneMap(s.notifications, same[models.Notification]),
		conversations: cloneMap(s.conversations, cloneConversation),
		messages:      cloneMap(s.messages, same[models.Message]),
		walletTxs:     cloneMap(s.walletTxs, same[models.WalletTransaction]),
	}
}

func cloneUser(u models.User) models.User {
	u.Skills = append([]string(nil), u.Skills...)
	return u
}

func cloneGig(g models.Gig) models.Gig {
	g.Tags = append([]string(nil), g.Tags...)
	g.Seller = nil
	return g
}

func cloneOrder(o models.Order) models.Order {
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		o.CompletedAt = &t
	}
	return o
}

func cloneConversation(c models.Conversation) models.Conversation {
	c.ParticipantIDs = append([]string(nil), c.ParticipantIDs...)
	return c
}

func (s *state) track(id string) {
	if _, ok := s.seq[id]; ok {
		return
	}
	s.next++
	s.seq[id] = s.next
}

func newestFirst[T any](s *state, items []T, at func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := at(items[i]), at(items[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return s.seq[id(items[i])] > s.seq[id(items[j])]
	})
}

func notFound(what, id string) error {
	return apperr.ErrNotFound.With("%s %s not found", what, id)
}

// =========================
// Reads
// =========================

func (s *state) ListCategories(_ context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *state) GetUser(_ context.Context, id string) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, notFound("user", id)
	}
	return cloneUser(u), nil
}

func (s *state) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return models.User{}, notFound("user", email)
}

func (s *state) GetGig(_ context.Context, id string) (models.Gig, error) {
	g, ok := s.gigs[id]
	if !ok {
		return models.Gig{}, notFound("gig", id)
	}
	return cloneGig(g), nil
}

func (s *state) ListGigs(_ context.Context, f store.GigFilter) ([]models.Gig, error) {
	all := make([]models.Gig, 0, len(s.gigs))
	for _, g := range s.gigs {
		all = append(all, cloneGig(g))
	}
	return store.ApplyGigFilter(all, f), nil
}

func (s *state) GetBid(_ context.Context, id string) (models.Bid, error) {
	b, ok := s.bids[id]
	if !ok {
		return models.Bid{}, notFound("bid", id)
	}
	return b, nil
}

func (s *state) ListBids(_ context.Context, f store.BidFilter) ([]models.Bid, error) {
	var out []models.Bid
	for _, b := range s.bids {
		if f.GigID != "" && b.GigID != f.GigID {
			continue
		}
		if f.BidderID != "" && b.BidderID != f.BidderID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	newestFirst(s, out, func(b models.Bid) time.Time { return b.CreatedAt }, func(b models.Bid) string { return b.ID })
	return out, nil
}

func (s *state) withGigTitle(o models.Order) models.Order {
	o = cloneOrder(o)
	if g, ok := s.gigs[o.GigID]; ok {
		o.GigTitle = g.Title
	}
	return o
}

func (s *state) GetOrder(_ context.Context, id string) (models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, notFound("order", id)
	}
	return s.withGigTitle(o), nil
}

func (s *state) ListOrders(_ context.Context, f store.OrderFilter) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if f.UserID != "" && o.BuyerID != f.UserID && o.SellerID != f.UserID {
			continue
		}
		if f.BuyerID != "" && o.BuyerID != f.BuyerID {
			continue
		}
		if f.SellerID != "" && o.SellerID != f.SellerID {
			continue
		}
		if f.GigID != "" && o.GigID != f.GigID {
			continue
		}
		out = append(out, s.withGigTitle(o))
	}
	newestFirst(s, out, func(o models.Order) time.Time { return o.CreatedAt }, func(o models.Order) string { return o.ID })
	return out, nil
}

func (s *state) ListReviews(_ context.Context, f store.ReviewFilter) ([]models.Review, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if f.OrderID != "" && r.OrderID != f.OrderID {
			continue
		}
		if f.GigID != "" && r.GigID != f.GigID {
			continue
		}
		if f.RevieweeID != "" && r.RevieweeID != f.RevieweeID {
			continue
		}
		g, hasGig := s.gigs[r.GigID]
		if f.GigOwnerID != "" && (!hasGig || g.UserID != f.GigOwnerID) {
			continue
		}
		if hasGig {
			r.GigTitle = g.Title
		}
		out = append(out, r)
	}
	newestFirst(s, out, func(r models.Review) time.Time { return r.CreatedAt }, func(r models.Review) string { return r.ID })
	return out, nil
}

func (s *state) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	newestFirst(s, out, func(n models.Notification) time.Time { return n.CreatedAt }, func(n models.Notification) string { return n.ID })
	return out, nil
}

func (s *state) GetConversation(_ context.Context, id string) (models.Conversation, error) {
	c, ok := s.conversations[id]
	if !ok {
		return models.Conversation{}, notFound("conversation", id)
	}
	return cloneConversation(c), nil
}

func (s *state) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, cloneConversation(c))
		}
	}
	newestFirst(s, out, func(c models.Conversation) time.Time { return c.UpdatedAt }, func(c models.Conversation) string { return c.ID })
	return out, nil
}

func (s *state) ListMessages(_ context.Context, conversationID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *state) ListWalletTransactions(_ context.Context, userID string) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	for _, t := range s.walletTxs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	newestFirst(s, out, func(t models.WalletTransaction) time.Time { return t.CreatedAt }, func(t models.WalletTransaction) string { return t.ID })
	return out, nil
}
