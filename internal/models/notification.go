package models

import "time"

type NotificationType string

const (
	NotifyBidReceived     NotificationType = "bid_received"
	NotifyBidAccepted     NotificationType = "bid_accepted"
	NotifyBidRejected     NotificationType = "bid_rejected"
	NotifyBidWithdrawn    NotificationType = "bid_withdrawn"
	NotifyOrderCreated    NotificationType = "order_created"
	NotifyOrderPaid       NotificationType = "order_paid"
	NotifyOrderCompleted  NotificationType = "order_completed"
	NotifyOrderCancelled  NotificationType = "order_cancelled"
	NotifyOrderDisputed   NotificationType = "order_disputed"
	NotifyReviewReceived  NotificationType = "review_received"
	NotifyMessageReceived NotificationType = "message_received"
)

// Notification is a user-scoped event record. It is informational only.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Reference string           `json:"reference,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Conversation is a two-party thread, optionally about a gig.
type Conversation struct {
	ID             string    `json:"id"`
	ParticipantIDs []string  `json:"participant_ids"`
	GigID          string    `json:"gig_id,omitempty"`
	LastMessage    string    `json:"last_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.ParticipantIDs {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is one entry of a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type WalletTxType string

const (
	WalletPayment WalletTxType = "payment"
	WalletPayout  WalletTxType = "payout"
	WalletRefund  WalletTxType = "refund"
)

// WalletTransaction is a ledger row. Amount is signed from the user's view.
type WalletTransaction struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Amount    int64        `json:"amount"`
	Type      WalletTxType `json:"type"`
	Reference string       `json:"reference"`
	CreatedAt time.Time    `json:"created_at"`
}
