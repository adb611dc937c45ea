package dataservice

import (
	"context"
	"errors"
	"time"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/config"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
)

// =========================
// Catalogue
// =========================

// GetCategories returns the taxonomy with live gig counts. Only the taxonomy
// is cached, and only when it came from the primary store. Counts are
// recomputed from gig rows on every read.
func (f *Facade) GetCategories(ctx context.Context) ([]models.Category, error) {
	return read(f, "get_categories", func(r store.Reader) ([]models.Category, error) {
		cats, err := f.taxonomy(ctx, r)
		if err != nil {
			return nil, err
		}
		gigs, err := r.ListGigs(ctx, store.GigFilter{})
		if err != nil {
			return nil, err
		}
		counts := make(map[string]int, len(cats))
		for _, g := range gigs {
			counts[g.CategoryID]++
		}
		for i := range cats {
			cats[i].GigCount = counts[cats[i].ID]
		}
		return cats, nil
	})
}

// taxonomy returns a copy the caller may modify.
func (f *Facade) taxonomy(ctx context.Context, r store.Reader) ([]models.Category, error) {
	cacheable := f.cache != nil && r == store.Reader(f.primary)
	if cacheable {
		if cats, ok := f.cache.Load(ctx); ok {
			return append([]models.Category(nil), cats...), nil
		}
	}
	cats, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		f.cache.Store(ctx, append([]models.Category(nil), cats...))
	}
	return cats, nil
}

func (f *Facade) GetGigs(ctx context.Context, filter store.GigFilter) ([]models.Gig, error) {
	return read(f, "get_gigs", func(r store.Reader) ([]models.Gig, error) {
		gigs, err := r.ListGigs(ctx, filter)
		if err != nil {
			return nil, err
		}
		return gigs, attachSellers(ctx, r, gigs)
	})
}

func (f *Facade) GetGig(ctx context.Context, id string) (models.Gig, error) {
	return read(f, "get_gig", func(r store.Reader) (models.Gig, error) {
		g, err := r.GetGig(ctx, id)
		if err != nil {
			return models.Gig{}, err
		}
		gigs := []models.Gig{g}
		if err := attachSellers(ctx, r, gigs); err != nil {
			return models.Gig{}, err
		}
		return gigs[0], nil
	})
}

// GetUserGigs lists the gigs a user owns. Deactivated gigs are included
// only for the owner's own view.
func (f *Facade) GetUserGigs(ctx context.Context, userID string, includeInactive bool) ([]models.Gig, error) {
	return f.GetGigs(ctx, store.GigFilter{OwnerID: userID, IncludeInactive: includeInactive})
}

// =========================
// Bids and orders
// =========================

func (f *Facade) GetBidsForGig(ctx context.Context, gigID string) ([]models.Bid, error) {
	return read(f, "get_bids_for_gig", func(r store.Reader) ([]models.Bid, error) {
		bids, err := r.ListBids(ctx, store.BidFilter{GigID: gigID})
		if err != nil {
			return nil, err
		}
		return bids, attachBidders(ctx, r, bids)
	})
}

func (f *Facade) GetUserBids(ctx context.Context, userID string) ([]models.Bid, error) {
	return read(f, "get_user_bids", func(r store.Reader) ([]models.Bid, error) {
		return r.ListBids(ctx, store.BidFilter{BidderID: userID})
	})
}

// GetUserOrders returns orders where the user is buyer or seller, newest first.
func (f *Facade) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return read(f, "get_user_orders", func(r store.Reader) ([]models.Order, error) {
		return r.ListOrders(ctx, store.OrderFilter{UserID: userID})
	})
}

func (f *Facade) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return read(f, "get_order", func(r store.Reader) (models.Order, error) {
		return r.GetOrder(ctx, id)
	})
}

// GetReviewsForUser returns reviews left on gigs the user owns, newest first,
// each with its gig title and reviewer.
func (f *Facade) GetReviewsForUser(ctx context.Context, userID string) ([]models.Review, error) {
	return read(f, "get_reviews_for_user", func(r store.Reader) ([]models.Review, error) {
		reviews, err := r.ListReviews(ctx, store.ReviewFilter{GigOwnerID: userID})
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(reviews))
		for i, rv := range reviews {
			ids[i] = rv.ReviewerID
		}
		people, err := summaries(ctx, r, ids)
		if err != nil {
			return nil, err
		}
		for i := range reviews {
			reviews[i].Reviewer = people[reviews[i].ReviewerID]
		}
		return reviews, nil
	})
}

// =========================
// Users
// =========================

func (f *Facade) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return read(f, "get_user", func(r store.Reader) (models.User, error) {
		return r.GetUser(ctx, id)
	})
}

// GetCurrentUser resolves the signed-in user. Fixture mode serves the demo
// user when no identity is supplied.
func (f *Facade) GetCurrentUser(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		if f.mode == config.ModeLive {
			return models.User{}, apperr.ErrUnauthorized.With("not signed in")
		}
		userID = memory.DemoUserID
	}
	return f.GetUserByID(ctx, userID)
}

// GetUserStats summarizes a user's selling and bidding activity.
func (f *Facade) GetUserStats(ctx context.Context, userID string) (models.UserStats, error) {
	return read(f, "get_user_stats", func(r store.Reader) (models.UserStats, error) {
		if _, err := r.GetUser(ctx, userID); err != nil {
			return models.UserStats{}, err
		}
		gigs, err := r.ListGigs(ctx, store.GigFilter{OwnerID: userID, IncludeInactive: true})
		if err != nil {
			return models.UserStats{}, err
		}
		orders, err := r.ListOrders(ctx, store.OrderFilter{SellerID: userID})
		if err != nil {
			return models.UserStats{}, err
		}
		reviews, err := r.ListReviews(ctx, store.ReviewFilter{RevieweeID: userID})
		if err != nil {
			return models.UserStats{}, err
		}
		bids, err := r.ListBids(ctx, store.BidFilter{BidderID: userID})
		if err != nil {
			return models.UserStats{}, err
		}
		return models.ComputeUserStats(userID, gigs, orders, reviews, bids), nil
	})
}

func (f *Facade) GetWalletTransactions(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	return read(f, "get_wallet_transactions", func(r store.Reader) ([]models.WalletTransaction, error) {
		return r.ListWalletTransactions(ctx, userID)
	})
}

// =========================
// Notifications and messages
// =========================

func (f *Facade) GetNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return read(f, "get_notifications", func(r store.Reader) ([]models.Notification, error) {
		return r.ListNotifications(ctx, userID)
	})
}

func (f *Facade) GetConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	return read(f, "get_conversations", func(r store.Reader) ([]models.Conversation, error) {
		return r.ListConversations(ctx, userID)
	})
}

// GetMessages returns a thread to one of its participants. A non-zero since
// keeps only messages created after it.
func (f *Facade) GetMessages(ctx context.Context, conversationID, userID string, since time.Time) ([]models.Message, error) {
	return read(f, "get_messages", func(r store.Reader) ([]models.Message, error) {
		conv, err := r.GetConversation(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if !conv.HasParticipant(userID) {
			return nil, apperr.ErrUnauthorized.With("not a participant in this conversation")
		}
		msgs, err := r.ListMessages(ctx, conversationID)
		if err != nil || since.IsZero() {
			return msgs, err
		}
		newer := msgs[:0]
		for _, m := range msgs {
			if m.CreatedAt.After(since) {
				newer = append(newer, m)
			}
		}
		return newer, nil
	})
}

// =========================
// Summaries
// =========================

func summaries(ctx context.Context, r store.Reader, ids []string) (map[string]*models.UserSummary, error) {
	out := make(map[string]*models.UserSummary, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen || id == "" {
			continue
		}
		u, err := r.GetUser(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			out[id] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		s := u.Summary()
		out[id] = &s
	}
	return out, nil
}

func attachSellers(ctx context.Context, r store.Reader, gigs []models.Gig) error {
	ids := make([]string, len(gigs))
	for i, g := range gigs {
		ids[i] = g.UserID
	}
	people, err := summaries(ctx, r, ids)
	if err != nil {
		return err
	}
	for i := range gigs {
		gigs[i].Seller = people[gigs[i].UserID]
	}
	return nil
}

func attachBidders(ctx context.Context, r store.Reader, bids []models.Bid) error {
	ids := make([]string, len(bids))
	for i, b := range bids {
		ids[i] = b.BidderID
	}
	people, err := summaries(ctx, r, ids)
	if err != nil {
		return err
	}
	for i := range bids {
		bids[i].Bidder = people[bids[i].BidderID]
	}
	return nil
}
