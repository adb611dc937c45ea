package marketplace

import (
	"context"
	"fmt"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/wallet"
)

// =========================
// CompleteOrder - buyer accepts delivery, escrow is released to the seller
// =========================
// The seller is credited amount minus the platform fee; the gig's order
// counter moves by one. Rating is recomputed only when a review arrives.
func (s *Service) CompleteOrder(ctx context.Context, orderID, actingUserID string) (models.Order, error) {
	peek, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	var out models.Order
	err = s.run(ctx, "order", "complete", func(ctx context.Context, u *unit) error {
		gig, err := u.tx.GetGig(ctx, peek.GigID)
		if err != nil {
			return err
		}
		o, err := u.tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.BuyerID != actingUserID {
			return apperr.ErrUnauthorized.With("only the buyer can complete this order")
		}
		if o.Status != models.OrderInProgress {
			return apperr.ErrNotInProgress.With("order is %s", o.Status)
		}

		at := u.at
		o.Status = models.OrderCompleted
		o.CompletedAt = &at
		o.UpdatedAt = at
		if err := u.tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		gig.TotalOrders++
		gig.UpdatedAt = at
		if err := u.tx.UpdateGig(ctx, gig); err != nil {
			return err
		}

		if _, err := wallet.Credit(ctx, u.tx, wallet.Entry{
			UserID:    o.SellerID,
			Amount:    o.SellerPayout(),
			Type:      models.WalletPayout,
			Reference: o.ID,
			At:        at,
		}); err != nil {
			return err
		}
		out = o

		return u.notifyParties(ctx, o, models.NotifyOrderCompleted, "Order completed",
			fmt.Sprintf("Order for %q is complete. You can now leave a review.", o.GigTitle),
			fmt.Sprintf("Order for %q is complete. %d has been released to your wallet.", o.GigTitle, o.SellerPayout()))
	})
	return out, err
}
