package models

import "time"

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

// Terminal reports whether no further transition is possible.
func (s BidStatus) Terminal() bool { return s != BidPending }

// Bid is a proposal against a request gig.
type Bid struct {
	ID           string    `json:"id"`
	GigID        string    `json:"gig_id"`
	BidderID     string    `json:"bidder_id"`
	Amount       int64     `json:"amount"`
	DeliveryDays int       `json:"delivery_days"`
	Proposal     string    `json:"proposal"`
	Status       BidStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Bidder *UserSummary `json:"bidder,omitempty"`
}
