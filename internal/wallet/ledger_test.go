package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
)

var now = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func TestDebitMovesBalanceAndWritesLedger(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSeeded()

	err := s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		u, err := Debit(ctx, tx, Entry{UserID: "user-5", Amount: 944, Type: models.WalletPayment, Reference: "order-3", At: now})
		if err != nil {
			return err
		}
		assert.EqualValues(t, 2000-944, u.WalletBalance)
		return nil
	})
	require.NoError(t, err)

	u, err := s.GetUser(ctx, "user-5")
	require.NoError(t, err)
	assert.EqualValues(t, 1056, u.WalletBalance)

	txs, err := s.ListWalletTransactions(ctx, "user-5")
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	assert.EqualValues(t, -944, txs[0].Amount)
	assert.Equal(t, models.WalletPayment, txs[0].Type)
	assert.Equal(t, "order-3", txs[0].Reference)
}

func TestDebitInsufficientFundsLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSeeded()
	before, err := s.ListWalletTransactions(ctx, "user-2")
	require.NoError(t, err)

	err = s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := Debit(ctx, tx, Entry{UserID: "user-2", Amount: 1_000_000, Type: models.WalletPayment, At: now})
		return err
	})
	assert.True(t, errors.Is(err, apperr.ErrInsufficientFunds))

	after, err := s.ListWalletTransactions(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestCreditPayoutCountsTowardsEarnings(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSeeded()
	start, err := s.GetUser(ctx, "user-2")
	require.NoError(t, err)

	err = s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := Credit(ctx, tx, Entry{UserID: "user-2", Amount: 499, Type: models.WalletPayout, Reference: "order-2", At: now}); err != nil {
			return err
		}
		_, err := Credit(ctx, tx, Entry{UserID: "user-2", Amount: 100, Type: models.WalletRefund, Reference: "order-x", At: now})
		return err
	})
	require.NoError(t, err)

	u, err := s.GetUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, start.WalletBalance+599, u.WalletBalance)
	assert.Equal(t, start.TotalEarnings+499, u.TotalEarnings)
}

func TestRecordDoesNotTouchBalance(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSeeded()

	err := s.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return Record(ctx, tx, Entry{UserID: "user-5", Amount: 944, Type: models.WalletPayment, Reference: "order-3", At: now}, -944)
	})
	require.NoError(t, err)

	u, err := s.GetUser(ctx, "user-5")
	require.NoError(t, err)
	assert.EqualValues(t, 2000, u.WalletBalance)
}
