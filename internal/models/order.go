package models

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderDisputed   OrderStatus = "disputed"
)

// Terminal reports whether the status dimension is closed.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled || s == OrderDisputed
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PayUPI        PaymentMethod = "upi"
	PayWallet     PaymentMethod = "wallet"
	PayCard       PaymentMethod = "card"
	PayNetbanking PaymentMethod = "netbanking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayUPI, PayWallet, PayCard, PayNetbanking:
		return true
	}
	return false
}

// PlatformFeePercent is the share of a service price charged on top of it.
const PlatformFeePercent = 5

// PlatformFee is PlatformFeePercent of price, rounded half up.
func PlatformFee(price int64) int64 {
	if price <= 0 {
		return 0
	}
	return (price*PlatformFeePercent + 50) / 100
}

// Order is the shared transactional record between a buyer and a seller.
type Order struct {
	ID            string        `json:"id"`
	GigID         string        `json:"gig_id"`
	BidID         string        `json:"bid_id,omitempty"`
	BuyerID       string        `json:"buyer_id"`
	SellerID      string        `json:"seller_id"`
	Amount        int64         `json:"amount"`
	PlatformFee   int64         `json:"platform_fee"`
	Requirements  string        `json:"requirements,omitempty"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	CancelReason  string        `json:"cancel_reason,omitempty"`
	DeliveryDate  time.Time     `json:"delivery_date"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	GigTitle string `json:"gig_title,omitempty"`
}

// SellerPayout is what the seller receives on completion.
func (o Order) SellerPayout() int64 { return o.Amount - o.PlatformFee }

// IsParticipant reports whether userID is the buyer or the seller.
func (o Order) IsParticipant(userID string) bool {
	return userID != "" && (userID == o.BuyerID || userID == o.SellerID)
}

// Consistent reports whether the two status dimensions agree: an order never
// advances past pending without captured payment, and only cancelled or
// disputed orders can be refunded.
func (o Order) Consistent() bool {
	switch o.Status {
	case OrderInProgress, OrderCompleted:
		return o.PaymentStatus == PaymentPaid
	case OrderPending:
		return o.PaymentStatus == PaymentPending
	}
	return true
}

// Dispute records a dispute raised on an in-progress order.
type Dispute struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	RaisedBy  string    `json:"raised_by"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const DisputeOpen = "open"
