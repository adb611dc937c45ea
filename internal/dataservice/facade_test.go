package dataservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/config"
	"github.com/sudo-init-do/studentmarket/internal/logging"
	"github.com/sudo-init-do/studentmarket/internal/metrics"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
	"github.com/sudo-init-do/studentmarket/internal/supabase"
)

// unreachable behaves like a live store whose connection is gone.
type unreachable struct {
	store.Store
}

var errDown = apperr.ErrTransient.With("connection refused")

func (unreachable) ListCategories(context.Context) ([]models.Category, error) { return nil, errDown }
func (unreachable) ListGigs(context.Context, store.GigFilter) ([]models.Gig, error) {
	return nil, errDown
}
func (unreachable) GetUser(context.Context, string) (models.User, error) { return models.User{}, errDown }
func (unreachable) ListOrders(context.Context, store.OrderFilter) ([]models.Order, error) {
	return nil, errDown
}
func (unreachable) WithTx(context.Context, func(context.Context, store.Tx) error) error {
	return errDown
}

type fakeAuth struct {
	signedUp []string
	resent   []string
}

func (a *fakeAuth) SignUp(_ context.Context, email, _ string, _ map[string]any) (supabase.AuthUser, error) {
	a.signedUp = append(a.signedUp, email)
	return supabase.AuthUser{ID: "auth-1", Email: email}, nil
}

func (a *fakeAuth) SignIn(_ context.Context, email, _ string) (supabase.Session, error) {
	return supabase.Session{AccessToken: "tok", User: supabase.AuthUser{ID: "auth-1", Email: email}}, nil
}

func (a *fakeAuth) SignOut(context.Context, string) error { return nil }

func (a *fakeAuth) Resend(_ context.Context, email string) error {
	a.resent = append(a.resent, email)
	return nil
}

func (a *fakeAuth) GetUser(context.Context, string) (supabase.AuthUser, error) {
	return supabase.AuthUser{ID: "auth-1"}, nil
}

type mapCache struct {
	cats   []models.Category
	stores int
}

func (c *mapCache) Load(context.Context) ([]models.Category, bool) { return c.cats, c.cats != nil }

func (c *mapCache) Store(_ context.Context, cats []models.Category) {
	c.cats = cats
	c.stores++
}

func fallbackCount(t *testing.T, m *metrics.Metrics, op string) float64 {
	t.Helper()
	fams, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range fams {
		if mf.GetName() != "studentmarket_data_fixture_fallbacks_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "op" && lp.GetValue() == op {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func newLive(t *testing.T, primary store.Store, a Auth) (*Facade, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	f, err := New(Options{
		Mode:    config.ModeLive,
		Primary: primary,
		Auth:    a,
		Metrics: m,
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)
	return f, m
}

func newFixture(t *testing.T) *Facade {
	t.Helper()
	f, err := New(Options{Mode: config.ModeFixture, Primary: memory.NewSeeded(), Logger: logging.Discard()})
	require.NoError(t, err)
	return f
}

func TestNewFailsFastOnBadWiring(t *testing.T) {
	_, err := New(Options{Mode: config.ModeFixture})
	assert.True(t, errors.Is(err, apperr.ErrConfig))

	_, err = New(Options{Mode: config.ModeLive, Primary: memory.New()})
	assert.True(t, errors.Is(err, apperr.ErrConfig))

	_, err = New(Options{Mode: "hybrid", Primary: memory.New()})
	assert.True(t, errors.Is(err, apperr.ErrConfig))
}

func TestReadsFallBackToFixturesWhenBackendIsDown(t *testing.T) {
	ctx := context.Background()
	f, m := newLive(t, unreachable{Store: memory.New()}, &fakeAuth{})

	gigs, err := f.GetGigs(ctx, store.GigFilter{SortBy: store.SortPriceLow})
	require.NoError(t, err)
	require.Len(t, gigs, 6)
	assert.EqualValues(t, 299, gigs[0].Price)
	require.NotNil(t, gigs[0].Seller)
	assert.Equal(t, "user-1", gigs[0].Seller.ID)
	assert.Equal(t, 1.0, fallbackCount(t, m, "get_gigs"))

	u, err := f.GetUserByID(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "user-2", u.ID)

	orders, err := f.GetUserOrders(ctx, "user-5")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestWritesNeverDegradeToFixtures(t *testing.T) {
	ctx := context.Background()
	f, m := newLive(t, unreachable{Store: memory.New()}, &fakeAuth{})

	name := "New Name"
	_, err := f.UpdateUser(ctx, "user-1", models.ProfilePatch{FullName: &name})
	assert.True(t, apperr.IsTransient(err))

	_, err = f.CreateOrder(ctx, "gig-1", "user-5", "")
	assert.True(t, apperr.IsTransient(err))

	_, err = f.AcceptBid(ctx, "bid-1", "user-5")
	assert.Error(t, err)

	assert.Zero(t, fallbackCount(t, m, "update_user"))
}

func TestHealthyLiveStoreDoesNotFallBack(t *testing.T) {
	ctx := context.Background()
	f, m := newLive(t, memory.New(), &fakeAuth{})

	_, err := f.GetGig(ctx, "gig-1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Zero(t, fallbackCount(t, m, "get_gig"))
}

func TestCategoriesAreCachedOnlyFromPrimary(t *testing.T) {
	ctx := context.Background()

	cache := &mapCache{}
	f, err := New(Options{Mode: config.ModeFixture, Primary: memory.NewSeeded(), Cache: cache, Logger: logging.Discard()})
	require.NoError(t, err)

	cats, err := f.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 6)
	assert.Equal(t, 1, cache.stores)
	for _, c := range cats {
		if c.ID == "cat-tech" {
			assert.Positive(t, c.GigCount)
		}
	}

	_, err = f.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.stores, "second read is served from cache")

	downCache := &mapCache{}
	live, err := New(Options{
		Mode:    config.ModeLive,
		Primary: unreachable{Store: memory.New()},
		Auth:    &fakeAuth{},
		Cache:   downCache,
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)
	cats, err = live.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 6)
	assert.Zero(t, downCache.stores)
}

func categoryCount(t *testing.T, f *Facade, id string) int {
	t.Helper()
	cats, err := f.GetCategories(context.Background())
	require.NoError(t, err)
	for _, c := range cats {
		if c.ID == id {
			return c.GigCount
		}
	}
	t.Fatalf("category %s missing", id)
	return 0
}

func TestCategoryCountsTrackGigWrites(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{}
	f, _ := newLive(t, memory.NewSeeded(), &fakeAuth{})
	f.cache = cache

	before := categoryCount(t, f, "cat-design")
	assert.Equal(t, 2, before)

	g, err := f.CreateGig(ctx, "user-3", models.GigInput{
		CategoryID:   "cat-design",
		Title:        "Poster design",
		Description:  "Event posters for college fests",
		GigType:      models.GigService,
		Price:        500,
		DeliveryDays: 2,
		Tags:         []string{"poster"},
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, categoryCount(t, f, "cat-design"))

	_, err = f.DeactivateGig(ctx, g.ID, "user-3")
	require.NoError(t, err)
	assert.Equal(t, before, categoryCount(t, f, "cat-design"))

	assert.Equal(t, 1, cache.stores, "taxonomy is cached once")
}

func TestFixtureModeSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.GetCurrentUser(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, memory.DemoUserID, u.ID)

	_, err = f.SignIn(ctx, "priya@coep.edu.in", "secret1")
	assert.True(t, errors.Is(err, apperr.ErrNotConfigured))

	_, err = f.SignUp(ctx, "priya@gmail.com", "secret1", models.SignUpProfile{FullName: "Priya"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidEmailDomain))
	_, err = f.SignUp(ctx, "priya@coep.edu.in", "secret1", models.SignUpProfile{FullName: "Priya"})
	assert.True(t, errors.Is(err, apperr.ErrNotConfigured))

	assert.True(t, errors.Is(f.ResendConfirmationEmail(ctx, "priya@coep.edu.in"), apperr.ErrNotConfigured))
	assert.NoError(t, f.SignOut(ctx, "anything"))
}

func TestLiveSignUpCreatesProfile(t *testing.T) {
	ctx := context.Background()
	a := &fakeAuth{}
	primary := memory.NewSeeded()
	f, _ := newLive(t, primary, a)

	_, err := f.SignUp(ctx, "new@coep.edu", "123", models.SignUpProfile{FullName: "New"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput), "short password")
	assert.Empty(t, a.signedUp)

	au, err := f.SignUp(ctx, " New@COEP.edu ", "secret1", models.SignUpProfile{FullName: " New Student ", College: "COEP"})
	require.NoError(t, err)
	assert.Equal(t, "auth-1", au.ID)
	assert.Equal(t, []string{"new@coep.edu"}, a.signedUp)

	u, err := primary.GetUser(ctx, "auth-1")
	require.NoError(t, err)
	assert.Equal(t, "New Student", u.FullName)
	assert.Equal(t, "new@coep.edu", u.Email)
	assert.Zero(t, u.WalletBalance)

	_, err = f.GetCurrentUser(ctx, "")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	require.NoError(t, f.ResendConfirmationEmail(ctx, "new@coep.edu"))
	assert.Equal(t, []string{"new@coep.edu"}, a.resent)
}

func TestUpdateUserKeepsAggregates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bio := "Final year CS"
	u, err := f.UpdateUser(ctx, "user-1", models.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, u.Bio)
	assert.EqualValues(t, 1500, u.WalletBalance)
	assert.Equal(t, 1000, u.ReputationScore)

	blank := "  "
	_, err = f.UpdateUser(ctx, "user-1", models.ProfilePatch{FullName: &blank})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestGetMessagesChecksParticipantAndSince(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	msgs, err := f.GetMessages(ctx, "conv-1", "user-2", time.Time{})
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	all := msgs
	newer, err := f.GetMessages(ctx, "conv-1", "user-2", all[0].CreatedAt)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "msg-2", newer[0].ID)

	_, err = f.GetMessages(ctx, "conv-1", "user-3", time.Time{})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestReviewsForUserCarryReviewer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reviews, err := f.GetReviewsForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.NotEmpty(t, reviews[0].GigTitle)
	require.NotNil(t, reviews[0].Reviewer)
	assert.Equal(t, "user-5", reviews[0].Reviewer.ID)
}

func TestBidsForGigCarryBidder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bids, err := f.GetBidsForGig(ctx, "gig-5")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	for _, b := range bids {
		require.NotNil(t, b.Bidder, b.ID)
		assert.Equal(t, b.BidderID, b.Bidder.ID)
	}
}

func TestUserStatsFromRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.GetUserStats(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 299, s.TotalEarnings)
	assert.Equal(t, 2, s.ActiveGigs)
	assert.Equal(t, 1, s.TotalOrders)
	assert.Equal(t, 5.0, s.AverageRating)
	assert.Zero(t, s.BidsPlaced)

	s, err = f.GetUserStats(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, s.BidsPlaced)
	assert.Zero(t, s.BidWinRate)
	assert.Zero(t, s.TotalEarnings)

	_, err = f.AcceptBid(ctx, "bid-1", "user-5")
	require.NoError(t, err)
	_, err = f.CompleteOrder(ctx, "order-2", "user-1")
	require.NoError(t, err)

	s, err = f.GetUserStats(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, s.BidsWon)
	assert.Equal(t, 100, s.BidWinRate)
	assert.EqualValues(t, 499, s.TotalEarnings)

	s, err = f.GetUserStats(ctx, "user-4")
	require.NoError(t, err)
	assert.Equal(t, 1, s.ActiveGigs)
	assert.Equal(t, 0, s.BidWinRate)
	assert.Equal(t, 1, s.BidsPlaced)

	_, err = f.GetUserStats(ctx, "nobody")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
