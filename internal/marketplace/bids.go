package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// BidInput is a proposal against a request gig.
type BidInput struct {
	GigID        string `json:"gig_id"`
	BidderID     string `json:"-"`
	Amount       int64  `json:"amount"`
	DeliveryDays int    `json:"delivery_days"`
	Proposal     string `json:"proposal"`
}

// AcceptResult is everything an acceptance changed.
type AcceptResult struct {
	Bid      models.Bid   `json:"bid"`
	Order    models.Order `json:"order"`
	Rejected []models.Bid `json:"rejected"`
}

// =========================
// SubmitBid - bidder proposes on a request gig
// =========================
func (s *Service) SubmitBid(ctx context.Context, in BidInput) (models.Bid, error) {
	var out models.Bid
	err := s.run(ctx, "bid", "submit", func(ctx context.Context, u *unit) error {
		gig, err := u.tx.GetGig(ctx, in.GigID)
		if err != nil {
			return err
		}
		switch {
		case gig.GigType != models.GigRequest:
			return apperr.ErrInvalidGigKind
		case gig.UserID == in.BidderID:
			return apperr.ErrSelfBidding
		case in.Amount <= 0:
			return apperr.ErrInvalidAmount
		case in.DeliveryDays <= 0:
			return apperr.ErrInvalidDeliveryDays
		case !gig.IsActive:
			return apperr.ErrGigInactive
		}
		if _, err := u.tx.GetUser(ctx, in.BidderID); err != nil {
			return err
		}

		// Repeat bids are allowed; log them so the policy can be revisited.
		mine, err := u.tx.ListBids(ctx, store.BidFilter{GigID: gig.ID, BidderID: in.BidderID})
		if err != nil {
			return err
		}
		if len(mine) > 0 {
			s.log.WithField("gig_id", gig.ID).WithField("bidder_id", in.BidderID).
				WithField("previous", len(mine)).Info("repeat bid on gig")
		}

		out = models.Bid{
			ID:           uuid.NewString(),
			GigID:        gig.ID,
			BidderID:     in.BidderID,
			Amount:       in.Amount,
			DeliveryDays: in.DeliveryDays,
			Proposal:     strings.TrimSpace(in.Proposal),
			Status:       models.BidPending,
			CreatedAt:    u.at,
			UpdatedAt:    u.at,
		}
		if err := u.tx.CreateBid(ctx, out); err != nil {
			return err
		}
		return u.notify(ctx, gig.UserID, models.NotifyBidReceived,
			"New bid on your request",
			fmt.Sprintf("%q received a bid of %d", gig.Title, in.Amount), out.ID)
	})
	return out, err
}

// =========================
// AcceptBid - gig owner picks the winning bid
// =========================
// The gig row is locked first and then every bid on it, so two concurrent
// acceptances on one gig serialize and the loser sees NotPending.
func (s *Service) AcceptBid(ctx context.Context, bidID, actingUserID string) (AcceptResult, error) {
	peek, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return AcceptResult{}, err
	}

	var res AcceptResult
	err = s.run(ctx, "bid", "accept", func(ctx context.Context, u *unit) error {
		gig, err := u.tx.GetGig(ctx, peek.GigID)
		if err != nil {
			return err
		}
		if gig.UserID != actingUserID {
			return apperr.ErrUnauthorized.With("only the gig owner can accept bids")
		}
		bids, err := u.tx.ListBids(ctx, store.BidFilter{GigID: gig.ID})
		if err != nil {
			return err
		}

		var target *models.Bid
		for i := range bids {
			if bids[i].ID == bidID {
				target = &bids[i]
			}
		}
		if target == nil {
			return apperr.ErrNotFound.With("bid %s not found", bidID)
		}
		if target.Status != models.BidPending {
			return apperr.ErrNotPending.With("bid is already %s", target.Status)
		}

		target.Status = models.BidAccepted
		target.UpdatedAt = u.at
		if err := u.tx.UpdateBid(ctx, *target); err != nil {
			return err
		}
		res = AcceptResult{Bid: *target, Rejected: []models.Bid{}}

		for _, b := range bids {
			if b.ID == bidID || b.Status != models.BidPending {
				continue
			}
			b.Status = models.BidRejected
			b.UpdatedAt = u.at
			if err := u.tx.UpdateBid(ctx, b); err != nil {
				return err
			}
			res.Rejected = append(res.Rejected, b)
			if err := u.notify(ctx, b.BidderID, models.NotifyBidRejected,
				"Bid not selected", fmt.Sprintf("Another bid was chosen for %q", gig.Title), b.ID); err != nil {
				return err
			}
		}

		res.Order = models.Order{
			ID:            uuid.NewString(),
			GigID:         gig.ID,
			BidID:         target.ID,
			BuyerID:       target.BidderID,
			SellerID:      gig.UserID,
			Amount:        target.Amount,
			PlatformFee:   0,
			Requirements:  target.Proposal,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
			DeliveryDate:  u.at.Add(time.Duration(target.DeliveryDays) * 24 * time.Hour),
			CreatedAt:     u.at,
			UpdatedAt:     u.at,
			GigTitle:      gig.Title,
		}
		if err := u.tx.CreateOrder(ctx, res.Order); err != nil {
			return err
		}
		return u.notify(ctx, target.BidderID, models.NotifyBidAccepted,
			"Your bid was accepted", fmt.Sprintf("Your bid on %q was accepted", gig.Title), res.Order.ID)
	})
	return res, err
}

// =========================
// RejectBid - gig owner declines a single bid
// =========================
func (s *Service) RejectBid(ctx context.Context, bidID, actingUserID string) (models.Bid, error) {
	return s.closeBid(ctx, "reject", bidID, func(gig models.Gig, b models.Bid) error {
		if gig.UserID != actingUserID {
			return apperr.ErrUnauthorized.With("only the gig owner can reject bids")
		}
		return nil
	}, models.BidRejected)
}

// =========================
// WithdrawBid - bidder retracts their own bid
// =========================
func (s *Service) WithdrawBid(ctx context.Context, bidID, actingUserID string) (models.Bid, error) {
	return s.closeBid(ctx, "withdraw", bidID, func(_ models.Gig, b models.Bid) error {
		if b.BidderID != actingUserID {
			return apperr.ErrUnauthorized.With("only the bidder can withdraw a bid")
		}
		return nil
	}, models.BidWithdrawn)
}

// closeBid moves one pending bid to a terminal status without cascade.
func (s *Service) closeBid(ctx context.Context, op, bidID string, authorize func(models.Gig, models.Bid) error, to models.BidStatus) (models.Bid, error) {
	peek, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return models.Bid{}, err
	}

	var out models.Bid
	err = s.run(ctx, "bid", op, func(ctx context.Context, u *unit) error {
		gig, err := u.tx.GetGig(ctx, peek.GigID)
		if err != nil {
			return err
		}
		b, err := u.tx.GetBid(ctx, bidID)
		if err != nil {
			return err
		}
		if err := authorize(gig, b); err != nil {
			return err
		}
		if b.Status != models.BidPending {
			return apperr.ErrNotPending.With("bid is already %s", b.Status)
		}

		b.Status = to
		b.UpdatedAt = u.at
		if err := u.tx.UpdateBid(ctx, b); err != nil {
			return err
		}
		out = b

		if to == models.BidWithdrawn {
			return u.notify(ctx, gig.UserID, models.NotifyBidWithdrawn,
				"Bid withdrawn", fmt.Sprintf("A bid on %q was withdrawn", gig.Title), b.ID)
		}
		return u.notify(ctx, b.BidderID, models.NotifyBidRejected,
			"Bid declined", fmt.Sprintf("Your bid on %q was declined", gig.Title), b.ID)
	})
	return out, err
}
