package marketplace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/logging"
	"github.com/sudo-init-do/studentmarket/internal/metrics"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
)

var testNow = time.Date(2024, time.October, 1, 12, 0, 0, 0, time.UTC)

type recordingDispatcher struct {
	mu    sync.Mutex
	notes []models.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, notes []models.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, notes...)
}

func (d *recordingDispatcher) types() []models.NotificationType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.NotificationType, 0, len(d.notes))
	for _, n := range d.notes {
		out = append(out, n.Type)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *memory.Store, *recordingDispatcher) {
	t.Helper()
	st := memory.NewSeeded()
	d := &recordingDispatcher{}
	svc := NewService(st,
		WithDispatcher(d),
		WithMetrics(metrics.New()),
		WithLogger(logging.Discard()),
		WithClock(func() time.Time { return testNow }),
	)
	return svc, st, d
}

func mustUser(t *testing.T, st store.Reader, id string) models.User {
	t.Helper()
	u, err := st.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

// =========================
// Bids
// =========================

func TestSubmitBidValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   BidInput
		want *apperr.Error
	}{
		{"service gig", BidInput{GigID: "gig-2", BidderID: "user-3", Amount: 100, DeliveryDays: 2}, apperr.ErrInvalidGigKind},
		{"own gig", BidInput{GigID: "gig-5", BidderID: "user-5", Amount: 100, DeliveryDays: 2}, apperr.ErrSelfBidding},
		{"zero amount", BidInput{GigID: "gig-5", BidderID: "user-3", Amount: 0, DeliveryDays: 2}, apperr.ErrInvalidAmount},
		{"negative amount", BidInput{GigID: "gig-5", BidderID: "user-3", Amount: -5, DeliveryDays: 2}, apperr.ErrInvalidAmount},
		{"zero days", BidInput{GigID: "gig-5", BidderID: "user-3", Amount: 100, DeliveryDays: 0}, apperr.ErrInvalidDeliveryDays},
		{"missing gig", BidInput{GigID: "gig-x", BidderID: "user-3", Amount: 100, DeliveryDays: 2}, apperr.ErrNotFound},
	}
	for _, tc := range cases {
		_, err := svc.SubmitBid(ctx, tc.in)
		assert.True(t, errors.Is(err, tc.want), "%s: %v", tc.name, err)
	}
}

func TestSubmitBidNotifiesOwner(t *testing.T) {
	svc, st, d := newTestService(t)
	ctx := context.Background()

	b, err := svc.SubmitBid(ctx, BidInput{GigID: "gig-5", BidderID: "user-3", Amount: 300, DeliveryDays: 3, Proposal: "  I can do it  "})
	require.NoError(t, err)
	assert.Equal(t, models.BidPending, b.Status)
	assert.Equal(t, "I can do it", b.Proposal)
	assert.Equal(t, testNow, b.CreatedAt)

	notes, err := st.ListNotifications(ctx, "user-5")
	require.NoError(t, err)
	assert.Equal(t, models.NotifyBidReceived, notes[0].Type)
	assert.Equal(t, b.ID, notes[0].Reference)
	assert.Equal(t, []models.NotificationType{models.NotifyBidReceived}, d.types())
}

func TestRepeatBidsAreAllowed(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.SubmitBid(ctx, BidInput{GigID: "gig-5", BidderID: "user-3", Amount: 300, DeliveryDays: 3})
		require.NoError(t, err)
	}
	mine, err := st.ListBids(ctx, store.BidFilter{GigID: "gig-5", BidderID: "user-3"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

// Two bids (450, 300) on one request gig; accepting 450 rejects 300 and
// creates exactly one order of 450.
func TestAcceptBidCascadesRejections(t *testing.T) {
	svc, st, d := newTestService(t)
	ctx := context.Background()

	low, err := svc.SubmitBid(ctx, BidInput{GigID: "gig-5", BidderID: "user-3", Amount: 300, DeliveryDays: 3})
	require.NoError(t, err)

	res, err := svc.AcceptBid(ctx, "bid-1", "user-5")
	require.NoError(t, err)
	assert.Equal(t, models.BidAccepted, res.Bid.Status)
	assert.EqualValues(t, 450, res.Order.Amount)
	assert.EqualValues(t, 0, res.Order.PlatformFee)
	assert.Equal(t, "bid-1", res.Order.BidID)
	assert.Equal(t, "user-2", res.Order.BuyerID)
	assert.Equal(t, "user-5", res.Order.SellerID)
	assert.Equal(t, models.OrderPending, res.Order.Status)
	assert.Equal(t, models.PaymentPending, res.Order.PaymentStatus)
	assert.Len(t, res.Rejected, 2)

	for _, id := range []string{"bid-2", low.ID} {
		b, err := st.GetBid(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.BidRejected, b.Status, id)
	}

	accepted, err := st.ListBids(ctx, store.BidFilter{GigID: "gig-5", Status: models.BidAccepted})
	require.NoError(t, err)
	assert.Len(t, accepted, 1)

	orders, err := st.ListOrders(ctx, store.OrderFilter{GigID: "gig-5"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.EqualValues(t, 450, orders[0].Amount)

	assert.ElementsMatch(t, []models.NotificationType{
		models.NotifyBidReceived,
		models.NotifyBidRejected,
		models.NotifyBidRejected,
		models.NotifyBidAccepted,
	}, d.types())
}

func TestAcceptBidTwiceFailsNotPending(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcceptBid(ctx, "bid-1", "user-5")
	require.NoError(t, err)

	_, err = svc.AcceptBid(ctx, "bid-1", "user-5")
	assert.True(t, errors.Is(err, apperr.ErrNotPending), "%v", err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, err = svc.AcceptBid(ctx, "bid-2", "user-5")
	assert.True(t, errors.Is(err, apperr.ErrNotPending))

	orders, err := st.ListOrders(ctx, store.OrderFilter{GigID: "gig-5"})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestAcceptBidRequiresOwner(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcceptBid(ctx, "bid-1", "user-2")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	b, err := st.GetBid(ctx, "bid-1")
	require.NoError(t, err)
	assert.Equal(t, models.BidPending, b.Status)
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"bid-1", "bid-2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.AcceptBid(ctx, id, "user-5")
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, apperr.ErrNotPending), "%v", err)
	}
	assert.Equal(t, 1, wins)

	accepted, err := st.ListBids(ctx, store.BidFilter{GigID: "gig-5", Status: models.BidAccepted})
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
	orders, err := st.ListOrders(ctx, store.OrderFilter{GigID: "gig-5"})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

// Withdrawing an accepted bid is a state conflict and leaves the order alone.
func TestWithdrawAcceptedBidFails(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.AcceptBid(ctx, "bid-1", "user-5")
	require.NoError(t, err)

	_, err = svc.WithdrawBid(ctx, "bid-1", "user-2")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.True(t, errors.Is(err, apperr.ErrNotPending))

	o, err := st.GetOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.EqualValues(t, 450, o.Amount)
}

func TestWithdrawAndRejectBid(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.WithdrawBid(ctx, "bid-1", "user-5")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized), "only the bidder may withdraw")

	b, err := svc.WithdrawBid(ctx, "bid-1", "user-2")
	require.NoError(t, err)
	assert.Equal(t, models.BidWithdrawn, b.Status)

	_, err = svc.RejectBid(ctx, "bid-2", "user-4")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized), "only the owner may reject")

	b, err = svc.RejectBid(ctx, "bid-2", "user-5")
	require.NoError(t, err)
	assert.Equal(t, models.BidRejected, b.Status)

	_, err = svc.RejectBid(ctx, "bid-2", "user-5")
	assert.True(t, errors.Is(err, apperr.ErrNotPending))

	notes, err := st.ListNotifications(ctx, "user-4")
	require.NoError(t, err)
	assert.Equal(t, models.NotifyBidRejected, notes[0].Type)
}

// =========================
// Orders
// =========================

func TestCreateOrderAddsPlatformFee(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	gig, err := svc.CreateGig(ctx, "user-3", models.GigInput{
		CategoryID:   "cat-design",
		Title:        "Poster design",
		Description:  "Event posters",
		GigType:      models.GigService,
		Price:        500,
		DeliveryDays: 2,
		Tags:         []string{"poster"},
	})
	require.NoError(t, err)

	o, err := svc.CreateOrder(ctx, gig.ID, "user-5", "A3 poster")
	require.NoError(t, err)
	assert.EqualValues(t, 525, o.Amount)
	assert.EqualValues(t, 25, o.PlatformFee)
	assert.Equal(t, "user-3", o.SellerID)
	assert.Equal(t, testNow.Add(48*time.Hour), o.DeliveryDate)

	mine, err := st.ListOrders(ctx, store.OrderFilter{UserID: "user-5"})
	require.NoError(t, err)
	require.NotEmpty(t, mine)
	assert.Equal(t, o.ID, mine[0].ID)
	assert.Equal(t, models.OrderPending, mine[0].Status)
	assert.Equal(t, models.PaymentPending, mine[0].PaymentStatus)
	assert.EqualValues(t, 525, mine[0].Amount)
}

func TestCreateOrderRejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "gig-1", "user-1", "")
	assert.True(t, errors.Is(err, apperr.ErrSelfPurchase))
	_, err = svc.CreateOrder(ctx, "gig-7", "user-5", "")
	assert.True(t, errors.Is(err, apperr.ErrGigInactive))
	_, err = svc.CreateOrder(ctx, "gig-1", "nobody", "")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCapturePaymentWithWallet(t *testing.T) {
	svc, st, d := newTestService(t)
	ctx := context.Background()

	_, err := svc.CapturePayment(ctx, "order-3", "user-3", models.PayWallet)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	_, err = svc.CapturePayment(ctx, "order-3", "user-5", "cash")
	assert.True(t, errors.Is(err, apperr.ErrInvalidPaymentMethod))

	o, err := svc.CapturePayment(ctx, "order-3", "user-5", models.PayWallet)
	require.NoError(t, err)
	assert.Equal(t, models.OrderInProgress, o.Status)
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, models.PayWallet, o.PaymentMethod)
	assert.EqualValues(t, 2000-944, mustUser(t, st, "user-5").WalletBalance)

	txs, err := st.ListWalletTransactions(ctx, "user-5")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.EqualValues(t, -944, txs[0].Amount)

	_, err = svc.CapturePayment(ctx, "order-3", "user-5", models.PayWallet)
	assert.True(t, errors.Is(err, apperr.ErrNotPending))
	assert.Contains(t, d.types(), models.NotifyOrderPaid)
}

func TestCapturePaymentExternalMethodKeepsBalance(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CapturePayment(ctx, "order-3", "user-5", models.PayUPI)
	require.NoError(t, err)
	assert.EqualValues(t, 2000, mustUser(t, st, "user-5").WalletBalance)

	txs, err := st.ListWalletTransactions(ctx, "user-5")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.WalletPayment, txs[0].Type)
}

func TestCapturePaymentInsufficientFundsIsAtomic(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "gig-1", "user-2", "")
	require.NoError(t, err)

	_, err = svc.CapturePayment(ctx, o.ID, "user-2", models.PayWallet)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientFunds), "%v", err)

	after, err := st.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, after.Status)
	assert.Equal(t, models.PaymentPending, after.PaymentStatus)
}

// Cancelling a paid order refunds the buyer by exactly the order amount.
func TestCancelPaidOrderRefunds(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	before := mustUser(t, st, "user-1").WalletBalance

	o, err := svc.CancelOrder(ctx, "order-2", "user-1", "schedule clash")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, o.Status)
	assert.Equal(t, models.PaymentRefunded, o.PaymentStatus)
	assert.Equal(t, "schedule clash", o.CancelReason)
	assert.Equal(t, before+524, mustUser(t, st, "user-1").WalletBalance)

	txs, err := st.ListWalletTransactions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.WalletRefund, txs[0].Type)
	assert.EqualValues(t, 524, txs[0].Amount)

	_, err = svc.CancelOrder(ctx, "order-2", "user-1", "")
	assert.True(t, errors.Is(err, apperr.ErrTerminalState))
}

func TestCancelUnpaidOrderHasNoRefund(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CancelOrder(ctx, "order-3", "user-1", "")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	o, err := svc.CancelOrder(ctx, "order-3", "user-3", "too busy")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, o.PaymentStatus)
	assert.EqualValues(t, 2000, mustUser(t, st, "user-5").WalletBalance)

	notes, err := st.ListNotifications(ctx, "user-5")
	require.NoError(t, err)
	assert.Equal(t, models.NotifyOrderCancelled, notes[0].Type)
}

// completeOrder by anyone but the buyer fails and leaves earnings alone.
func TestCompleteOrderRequiresBuyer(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	before := mustUser(t, st, "user-2")

	_, err := svc.CompleteOrder(ctx, "order-2", "user-2")
	assert.Equal(t, apperr.Authorization, apperr.KindOf(err))
	assert.Equal(t, before.TotalEarnings, mustUser(t, st, "user-2").TotalEarnings)
}

func TestCompleteOrderPaysSeller(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	seller := mustUser(t, st, "user-2")

	o, err := svc.CompleteOrder(ctx, "order-2", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, o.Status)
	require.NotNil(t, o.CompletedAt)
	assert.Equal(t, testNow, *o.CompletedAt)

	after := mustUser(t, st, "user-2")
	assert.Equal(t, seller.WalletBalance+499, after.WalletBalance)
	assert.Equal(t, seller.TotalEarnings+499, after.TotalEarnings)

	g, err := st.GetGig(ctx, "gig-2")
	require.NoError(t, err)
	assert.Equal(t, 1, g.TotalOrders)

	_, err = svc.CompleteOrder(ctx, "order-2", "user-1")
	assert.True(t, errors.Is(err, apperr.ErrNotInProgress))
	_, err = svc.CompleteOrder(ctx, "order-3", "user-5")
	assert.True(t, errors.Is(err, apperr.ErrNotInProgress), "pending orders cannot skip to completed")
}

func TestRaiseDispute(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RaiseDispute(ctx, "order-3", "user-5", "late")
	assert.True(t, errors.Is(err, apperr.ErrNotInProgress))
	_, err = svc.RaiseDispute(ctx, "order-1", "user-5", "late")
	assert.True(t, errors.Is(err, apperr.ErrTerminalState))
	_, err = svc.RaiseDispute(ctx, "order-2", "user-4", "late")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	_, err = svc.RaiseDispute(ctx, "order-2", "user-2", "  ")
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	o, err := svc.RaiseDispute(ctx, "order-2", "user-2", "buyer unresponsive")
	require.NoError(t, err)
	assert.Equal(t, models.OrderDisputed, o.Status)
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus, "disputes do not auto-refund")

	_, err = svc.CancelOrder(ctx, "order-2", "user-1", "")
	assert.True(t, errors.Is(err, apperr.ErrTerminalState))

	notes, err := st.ListNotifications(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.NotifyOrderDisputed, notes[0].Type)
}

// =========================
// Reviews and gigs
// =========================

func TestCreateReviewRecomputesAggregates(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, "order-2", "user-1", CreateReviewRequest{Rating: 4})
	assert.True(t, errors.Is(err, apperr.ErrNotCompleted))

	_, err = svc.CompleteOrder(ctx, "order-2", "user-1")
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, "order-2", "user-2", CreateReviewRequest{Rating: 4})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	_, err = svc.CreateReview(ctx, "order-2", "user-1", CreateReviewRequest{Rating: 6})
	assert.True(t, errors.Is(err, apperr.ErrInvalidRating))

	r, err := svc.CreateReview(ctx, "order-2", "user-1", CreateReviewRequest{Rating: 4, Comment: "Clear explanations"})
	require.NoError(t, err)
	assert.Equal(t, "user-2", r.RevieweeID)
	assert.Equal(t, "Python & Data Science Mentorship", r.GigTitle)

	g, err := st.GetGig(ctx, "gig-2")
	require.NoError(t, err)
	assert.Equal(t, 4.0, g.Rating)
	assert.Equal(t, 800, mustUser(t, st, "user-2").ReputationScore)

	_, err = svc.CreateReview(ctx, "order-2", "user-1", CreateReviewRequest{Rating: 5})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyReviewed))

	notes, err := st.ListNotifications(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, models.NotifyReviewReceived, notes[0].Type)
}

func TestGigLifecycle(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateGig(ctx, "user-2", models.GigInput{Title: "x", Description: "y", CategoryID: "cat-tech", GigType: models.GigService, Price: 10, DeliveryDays: 1, Tags: []string{"a"}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.Equal(t, "minimum price is 50", apperr.Message(err))

	_, err = svc.CreateGig(ctx, "user-2", models.GigInput{Title: "x", Description: "y", CategoryID: "cat-none", GigType: models.GigService, Price: 100, DeliveryDays: 1, Tags: []string{"a"}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	g, err := svc.CreateGig(ctx, "user-2", models.GigInput{
		Title:        " SQL tutoring ",
		Description:  "Joins and indexes",
		CategoryID:   "cat-tech",
		GigType:      models.GigService,
		Price:        150,
		DeliveryDays: 1,
		Tags:         []string{"sql", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "SQL tutoring", g.Title)
	assert.Equal(t, []string{"sql"}, g.Tags)
	assert.True(t, g.IsActive)
	assert.Equal(t, models.SkillBeginner, g.SkillLevel)
	assert.Zero(t, g.TotalOrders)

	price := int64(200)
	_, err = svc.UpdateGig(ctx, g.ID, "user-3", models.GigPatch{Price: &price})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	updated, err := svc.UpdateGig(ctx, g.ID, "user-2", models.GigPatch{Price: &price})
	require.NoError(t, err)
	assert.EqualValues(t, 200, updated.Price)

	_, err = svc.DeactivateGig(ctx, g.ID, "user-2")
	require.NoError(t, err)
	_, err = svc.DeactivateGig(ctx, g.ID, "user-2")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	active, err := st.ListGigs(ctx, store.GigFilter{OwnerID: "user-2"})
	require.NoError(t, err)
	for _, a := range active {
		assert.NotEqual(t, g.ID, a.ID)
	}
}

func TestOrderInvariantHoldsAcrossLifecycle(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CapturePayment(ctx, "order-3", "user-5", models.PayCard)
	require.NoError(t, err)
	_, err = svc.CompleteOrder(ctx, "order-3", "user-5")
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, "order-1", "user-5", "")
	assert.True(t, errors.Is(err, apperr.ErrTerminalState))

	orders, err := st.ListOrders(ctx, store.OrderFilter{})
	require.NoError(t, err)
	for _, o := range orders {
		assert.True(t, o.Consistent(), o.ID)
	}
}

func (d *recordingDispatcher) recipients(typ models.NotificationType, ref string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, n := range d.notes {
		if n.Type == typ && n.Reference == ref {
			out = append(out, n.UserID)
		}
	}
	return out
}

func TestOrderStatusChangesNotifyBothParties(t *testing.T) {
	svc, _, d := newTestService(t)
	ctx := context.Background()

	_, err := svc.CapturePayment(ctx, "order-3", "user-5", models.PayWallet)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-5", "user-3"}, d.recipients(models.NotifyOrderPaid, "order-3"))

	_, err = svc.RaiseDispute(ctx, "order-3", "user-5", "Files never arrived")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-5", "user-3"}, d.recipients(models.NotifyOrderDisputed, "order-3"))

	_, err = svc.CompleteOrder(ctx, "order-2", "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, d.recipients(models.NotifyOrderCompleted, "order-2"))

	o, err := svc.CreateOrder(ctx, "gig-4", "user-5", "Two blog posts")
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, o.ID, "user-5", "Changed my mind")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-5", "user-4"}, d.recipients(models.NotifyOrderCancelled, o.ID))
}
