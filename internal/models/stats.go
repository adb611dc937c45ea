package models

import "math"

// UserStats is the dashboard summary for one user.
type UserStats struct {
	TotalEarnings int64   `json:"total_earnings"`
	ActiveGigs    int     `json:"active_gigs"`
	TotalOrders   int     `json:"total_orders"`
	AverageRating float64 `json:"average_rating"`
	BidsPlaced    int     `json:"bids_placed"`
	BidsWon       int     `json:"bids_won"`
	BidWinRate    int     `json:"bid_win_rate"`
}

// ComputeUserStats folds the user's rows into a UserStats. Earnings are
// seller payouts of completed orders. Orders count every order the user
// sold, cancelled ones excluded. The win rate is a whole percentage of
// placed bids that were accepted.
func ComputeUserStats(userID string, gigs []Gig, orders []Order, received []Review, bids []Bid) UserStats {
	var s UserStats
	for _, g := range gigs {
		if g.UserID == userID && g.IsActive {
			s.ActiveGigs++
		}
	}
	for _, o := range orders {
		if o.SellerID != userID || o.Status == OrderCancelled {
			continue
		}
		s.TotalOrders++
		if o.Status == OrderCompleted {
			s.TotalEarnings += o.SellerPayout()
		}
	}
	s.AverageRating = GigRating(received)
	for _, b := range bids {
		if b.BidderID != userID {
			continue
		}
		s.BidsPlaced++
		if b.Status == BidAccepted {
			s.BidsWon++
		}
	}
	if s.BidsPlaced > 0 {
		s.BidWinRate = int(math.Round(float64(s.BidsWon) / float64(s.BidsPlaced) * 100))
	}
	return s
}
