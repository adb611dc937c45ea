package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// Entry describes one balance movement. Amount is always positive; the
// direction comes from the call (Debit, Credit or Record).
type Entry struct {
	UserID    string
	Amount    int64
	Type      models.WalletTxType
	Reference string
	At        time.Time
}

// Debit takes e.Amount from the user's spendable balance and records a
// negative ledger row. The user row is locked by tx.
func Debit(ctx context.Context, tx store.Tx, e Entry) (models.User, error) {
	if e.Amount <= 0 {
		return models.User{}, apperr.ErrInvalidAmount
	}
	u, err := tx.GetUser(ctx, e.UserID)
	if err != nil {
		return models.User{}, err
	}
	if u.WalletBalance < e.Amount {
		return models.User{}, apperr.ErrInsufficientFunds.With(
			"wallet balance %d is below %d", u.WalletBalance, e.Amount)
	}
	u.WalletBalance -= e.Amount
	u.UpdatedAt = e.At
	if err := tx.UpdateUser(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, write(ctx, tx, e, -e.Amount)
}

// Credit adds e.Amount to the user's balance. Payouts also count towards
// total_earnings; refunds do not.
func Credit(ctx context.Context, tx store.Tx, e Entry) (models.User, error) {
	if e.Amount < 0 {
		return models.User{}, apperr.ErrInvalidAmount
	}
	u, err := tx.GetUser(ctx, e.UserID)
	if err != nil {
		return models.User{}, err
	}
	u.WalletBalance += e.Amount
	if e.Type == models.WalletPayout {
		u.TotalEarnings += e.Amount
	}
	u.UpdatedAt = e.At
	if err := tx.UpdateUser(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, write(ctx, tx, e, e.Amount)
}

// Record writes a ledger row without touching the balance. It is used for
// payments settled outside the wallet (upi, card, netbanking).
func Record(ctx context.Context, tx store.Tx, e Entry, signed int64) error {
	return write(ctx, tx, e, signed)
}

func write(ctx context.Context, tx store.Tx, e Entry, signed int64) error {
	return tx.CreateWalletTransaction(ctx, models.WalletTransaction{
		ID:        uuid.NewString(),
		UserID:    e.UserID,
		Amount:    signed,
		Type:      e.Type,
		Reference: e.Reference,
		CreatedAt: e.At,
	})
}
