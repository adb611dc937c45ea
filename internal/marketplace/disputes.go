package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
)

// =========================
// RaiseDispute - either participant flags an in-progress order
// =========================
// No refund happens here; resolution is manual.
func (s *Service) RaiseDispute(ctx context.Context, orderID, actingUserID, reason string) (models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Order{}, apperr.ErrInvalidInput.With("reason is required")
	}

	var out models.Order
	err := s.run(ctx, "order", "dispute", func(ctx context.Context, u *unit) error {
		o, err := u.tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.IsParticipant(actingUserID) {
			return apperr.ErrUnauthorized.With("only the buyer or seller can dispute this order")
		}
		switch {
		case o.Status.Terminal():
			return apperr.ErrTerminalState.With("order is already %s", o.Status)
		case o.Status != models.OrderInProgress:
			return apperr.ErrNotInProgress.With("order is %s", o.Status)
		}

		o.Status = models.OrderDisputed
		o.UpdatedAt = u.at
		if err := u.tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := u.tx.CreateDispute(ctx, models.Dispute{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			RaisedBy:  actingUserID,
			Reason:    reason,
			Status:    models.DisputeOpen,
			CreatedAt: u.at,
		}); err != nil {
			return err
		}
		out = o

		body := fmt.Sprintf("A dispute was opened on %q: %s", o.GigTitle, reason)
		return u.notifyParties(ctx, o, models.NotifyOrderDisputed, "Dispute opened", body, body)
	})
	return out, err
}
