package marketplace

import (
	"context"
	"fmt"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/wallet"
)

// =========================
// CapturePayment - buyer pays, order moves to in_progress
// =========================
// Payment and the status advance are one step: an order is never
// in_progress while unpaid. Wallet payments debit the buyer's balance;
// other methods settle outside and are only recorded in the ledger.
func (s *Service) CapturePayment(ctx context.Context, orderID, actingUserID string, method models.PaymentMethod) (models.Order, error) {
	if !method.Valid() {
		return models.Order{}, apperr.ErrInvalidPaymentMethod.With("unsupported payment method %q", method)
	}

	var out models.Order
	err := s.run(ctx, "order", "pay", func(ctx context.Context, u *unit) error {
		o, err := u.tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.BuyerID != actingUserID {
			return apperr.ErrUnauthorized.With("only the buyer can pay for this order")
		}
		if o.PaymentStatus != models.PaymentPending {
			return apperr.ErrNotPending.With("payment is already %s", o.PaymentStatus)
		}
		if o.Status != models.OrderPending {
			return apperr.ErrTerminalState.With("order is already %s", o.Status)
		}

		o.PaymentStatus = models.PaymentPaid
		o.PaymentMethod = method
		o.Status = models.OrderInProgress
		o.UpdatedAt = u.at
		if err := u.tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		entry := wallet.Entry{
			UserID:    o.BuyerID,
			Amount:    o.Amount,
			Type:      models.WalletPayment,
			Reference: o.ID,
			At:        u.at,
		}
		if method == models.PayWallet {
			if _, err := wallet.Debit(ctx, u.tx, entry); err != nil {
				return err
			}
		} else if err := wallet.Record(ctx, u.tx, entry, -o.Amount); err != nil {
			return err
		}
		out = o

		return u.notifyParties(ctx, o, models.NotifyOrderPaid, "Order paid",
			fmt.Sprintf("Your payment of %d for %q is confirmed.", o.Amount, o.GigTitle),
			fmt.Sprintf("Payment received for %q. You can start working.", o.GigTitle))
	})
	return out, err
}
