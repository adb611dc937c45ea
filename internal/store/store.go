// Package store defines the persistence boundary of the marketplace. The
// engines and the data facade depend only on these interfaces; the memory
// and postgres packages provide the fixture and live implementations.
package store

import (
	"context"

	"github.com/sudo-init-do/studentmarket/internal/models"
)

// Reader is the read side shared by a Store and its transactions. Single-row
// getters return apperr.ErrNotFound when the row does not exist.
type Reader interface {
	ListCategories(ctx context.Context) ([]models.Category, error)

	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	GetGig(ctx context.Context, id string) (models.Gig, error)
	ListGigs(ctx context.Context, f GigFilter) ([]models.Gig, error)

	GetBid(ctx context.Context, id string) (models.Bid, error)
	ListBids(ctx context.Context, f BidFilter) ([]models.Bid, error)

	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)

	ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error)

	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)

	GetConversation(ctx context.Context, id string) (models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)

	ListWalletTransactions(ctx context.Context, userID string) ([]models.WalletTransaction, error)
}

// Tx is a unit of work. Single-row getters on a Tx lock the row until the
// transaction ends; callers lock gig, then bids, then order, then users.
type Tx interface {
	Reader

	CreateUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, u models.User) error

	UpsertCategory(ctx context.Context, c models.Category) error

	CreateGig(ctx context.Context, g models.Gig) error
	UpdateGig(ctx context.Context, g models.Gig) error

	CreateBid(ctx context.Context, b models.Bid) error
	UpdateBid(ctx context.Context, b models.Bid) error

	CreateOrder(ctx context.Context, o models.Order) error
	UpdateOrder(ctx context.Context, o models.Order) error

	CreateReview(ctx context.Context, r models.Review) error
	CreateDispute(ctx context.Context, d models.Dispute) error

	CreateNotification(ctx context.Context, n models.Notification) error
	MarkNotificationRead(ctx context.Context, id, userID string) error

	CreateConversation(ctx context.Context, c models.Conversation) error
	UpdateConversation(ctx context.Context, c models.Conversation) error
	CreateMessage(ctx context.Context, m models.Message) error

	CreateWalletTransaction(ctx context.Context, t models.WalletTransaction) error
}

// Store is a Reader that can open transactions. WithTx commits when fn
// returns nil and rolls back otherwise; no partial write is ever visible.
type Store interface {
	Reader
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close()
}
