package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/wallet"
)

// =========================
// CreateOrder - buyer purchases a gig directly
// =========================
// amount = price + platform fee. The order starts pending/pending.
func (s *Service) CreateOrder(ctx context.Context, gigID, buyerID, requirements string) (models.Order, error) {
	var out models.Order
	err := s.run(ctx, "order", "create", func(ctx context.Context, u *unit) error {
		gig, err := u.tx.GetGig(ctx, gigID)
		if err != nil {
			return err
		}
		if gig.UserID == buyerID {
			return apperr.ErrSelfPurchase
		}
		if !gig.IsActive {
			return apperr.ErrGigInactive
		}
		if _, err := u.tx.GetUser(ctx, buyerID); err != nil {
			return err
		}

		fee := models.PlatformFee(gig.Price)
		out = models.Order{
			ID:            uuid.NewString(),
			GigID:         gig.ID,
			BuyerID:       buyerID,
			SellerID:      gig.UserID,
			Amount:        gig.Price + fee,
			PlatformFee:   fee,
			Requirements:  strings.TrimSpace(requirements),
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
			DeliveryDate:  u.at.Add(time.Duration(gig.DeliveryDays) * 24 * time.Hour),
			CreatedAt:     u.at,
			UpdatedAt:     u.at,
			GigTitle:      gig.Title,
		}
		if err := u.tx.CreateOrder(ctx, out); err != nil {
			return err
		}
		return u.notify(ctx, gig.UserID, models.NotifyOrderCreated,
			"New order", fmt.Sprintf("You have a new order for %q", gig.Title), out.ID)
	})
	return out, err
}

// =========================
// CancelOrder - either participant cancels before completion
// =========================
// A paid order is refunded in full to the buyer's wallet.
func (s *Service) CancelOrder(ctx context.Context, orderID, actingUserID, reason string) (models.Order, error) {
	var out models.Order
	err := s.run(ctx, "order", "cancel", func(ctx context.Context, u *unit) error {
		o, err := u.tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(actingUserID) {
			return apperr.ErrUnauthorized.With("only the buyer or seller can cancel this order")
		}
		if o.Status.Terminal() {
			return apperr.ErrTerminalState.With("order is already %s", o.Status)
		}

		refund := o.PaymentStatus == models.PaymentPaid
		o.Status = models.OrderCancelled
		o.CancelReason = strings.TrimSpace(reason)
		if refund {
			o.PaymentStatus = models.PaymentRefunded
		}
		o.UpdatedAt = u.at
		if err := u.tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if refund {
			if _, err := wallet.Credit(ctx, u.tx, wallet.Entry{
				UserID:    o.BuyerID,
				Amount:    o.Amount,
				Type:      models.WalletRefund,
				Reference: o.ID,
				At:        u.at,
			}); err != nil {
				return err
			}
		}
		out = o

		body := fmt.Sprintf("Order for %q was cancelled", o.GigTitle)
		if o.CancelReason != "" {
			body += ": " + o.CancelReason
		}
		return u.notifyParties(ctx, o, models.NotifyOrderCancelled, "Order cancelled", body, body)
	})
	return out, err
}
