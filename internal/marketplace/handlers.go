package marketplace

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// Facade is what the HTTP layer needs: reads that may fall back to fixture
// data and the engine transitions.
type Facade interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetGigs(ctx context.Context, f store.GigFilter) ([]models.Gig, error)
	GetGig(ctx context.Context, id string) (models.Gig, error)
	GetUserGigs(ctx context.Context, userID string, includeInactive bool) ([]models.Gig, error)
	GetBidsForGig(ctx context.Context, gigID string) ([]models.Bid, error)
	GetUserBids(ctx context.Context, userID string) ([]models.Bid, error)
	GetUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	GetReviewsForUser(ctx context.Context, userID string) ([]models.Review, error)

	CreateGig(ctx context.Context, ownerID string, in models.GigInput) (models.Gig, error)
	UpdateGig(ctx context.Context, gigID, actingUserID string, patch models.GigPatch) (models.Gig, error)
	DeactivateGig(ctx context.Context, gigID, actingUserID string) (models.Gig, error)

	SubmitBid(ctx context.Context, in BidInput) (models.Bid, error)
	AcceptBid(ctx context.Context, bidID, actingUserID string) (AcceptResult, error)
	RejectBid(ctx context.Context, bidID, actingUserID string) (models.Bid, error)
	WithdrawBid(ctx context.Context, bidID, actingUserID string) (models.Bid, error)

	CreateOrder(ctx context.Context, gigID, buyerID, requirements string) (models.Order, error)
	CapturePayment(ctx context.Context, orderID, actingUserID string, method models.PaymentMethod) (models.Order, error)
	CompleteOrder(ctx context.Context, orderID, actingUserID string) (models.Order, error)
	CancelOrder(ctx context.Context, orderID, actingUserID, reason string) (models.Order, error)
	RaiseDispute(ctx context.Context, orderID, actingUserID, reason string) (models.Order, error)
	CreateReview(ctx context.Context, orderID, actingUserID string, req CreateReviewRequest) (models.Review, error)
}

type Handler struct {
	data Facade
}

func NewHandler(data Facade) *Handler { return &Handler{data: data} }

// =========================
// Gigs
// =========================

// ListCategories - taxonomy with live gig counts
func (h *Handler) ListCategories(c echo.Context) error {
	cats, err := h.data.GetCategories(c.Request().Context())
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": nonNil(cats)})
}

// ListGigs - public browse with search, category, price range and sort
func (h *Handler) ListGigs(c echo.Context) error {
	f, err := gigFilterFromQuery(c)
	if err != nil {
		return middleware.Fail(c, err)
	}
	gigs, err := h.data.GetGigs(c.Request().Context(), f)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gigs": nonNil(gigs), "count": len(gigs)})
}

func gigFilterFromQuery(c echo.Context) (store.GigFilter, error) {
	f := store.GigFilter{
		Search:     strings.TrimSpace(c.QueryParam("search")),
		CategoryID: c.QueryParam("category_id"),
		SortBy:     store.ParseSortBy(c.QueryParam("sort_by")),
		GigType:    models.GigType(c.QueryParam("gig_type")),
	}
	if f.GigType != "" && !f.GigType.Valid() {
		return f, apperr.ErrInvalidInput.With("gig_type must be service or request")
	}
	for _, b := range []struct {
		name string
		dst  **int64
	}{
		{"min_price", &f.PriceRange.Min},
		{"max_price", &f.PriceRange.Max},
	} {
		raw := c.QueryParam(b.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return f, apperr.ErrInvalidInput.With("%s must be a non-negative integer", b.name)
		}
		*b.dst = &v
	}
	return f, nil
}

func (h *Handler) GetGig(c echo.Context) error {
	g, err := h.data.GetGig(c.Request().Context(), c.Param("id"))
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) UserGigs(c echo.Context) error {
	gigs, err := h.data.GetUserGigs(c.Request().Context(), c.Param("id"), false)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gigs": nonNil(gigs)})
}

// MyGigs - the owner's own listing, deactivated gigs included
func (h *Handler) MyGigs(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	gigs, err := h.data.GetUserGigs(c.Request().Context(), uid, true)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"gigs": nonNil(gigs)})
}

func (h *Handler) CreateGig(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var in models.GigInput
	if err := middleware.Bind(c, &in); err != nil {
		return middleware.Fail(c, err)
	}
	g, err := h.data.CreateGig(c.Request().Context(), uid, in)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) UpdateGig(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var patch models.GigPatch
	if err := middleware.Bind(c, &patch); err != nil {
		return middleware.Fail(c, err)
	}
	g, err := h.data.UpdateGig(c.Request().Context(), c.Param("id"), uid, patch)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) DeactivateGig(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	g, err := h.data.DeactivateGig(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// =========================
// Bids
// =========================

// GigBids - the gig owner sees every bid; anyone else only their own
func (h *Handler) GigBids(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	ctx := c.Request().Context()
	g, err := h.data.GetGig(ctx, c.Param("id"))
	if err != nil {
		return middleware.Fail(c, err)
	}
	bids, err := h.data.GetBidsForGig(ctx, g.ID)
	if err != nil {
		return middleware.Fail(c, err)
	}
	if g.UserID != uid {
		mine := bids[:0]
		for _, b := range bids {
			if b.BidderID == uid {
				mine = append(mine, b)
			}
		}
		bids = mine
	}
	return c.JSON(http.StatusOK, echo.Map{"bids": nonNil(bids)})
}

func (h *Handler) MyBids(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	bids, err := h.data.GetUserBids(c.Request().Context(), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bids": nonNil(bids)})
}

func (h *Handler) SubmitBid(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var in BidInput
	if err := middleware.Bind(c, &in); err != nil {
		return middleware.Fail(c, err)
	}
	in.GigID = c.Param("id")
	in.BidderID = uid
	b, err := h.data.SubmitBid(c.Request().Context(), in)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) AcceptBid(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	res, err := h.data.AcceptBid(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) RejectBid(c echo.Context) error {
	return h.closeBid(c, h.data.RejectBid)
}

func (h *Handler) WithdrawBid(c echo.Context) error {
	return h.closeBid(c, h.data.WithdrawBid)
}

func (h *Handler) closeBid(c echo.Context, op func(context.Context, string, string) (models.Bid, error)) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	b, err := op(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// =========================
// Orders
// =========================

func (h *Handler) CreateOrder(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var req createOrderRequest
	if err := middleware.Bind(c, &req); err != nil {
		return middleware.Fail(c, err)
	}
	if req.GigID == "" {
		return middleware.Fail(c, apperr.ErrInvalidInput.With("gig_id is required"))
	}
	o, err := h.data.CreateOrder(c.Request().Context(), req.GigID, uid, req.Requirements)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) MyOrders(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	orders, err := h.data.GetUserOrders(c.Request().Context(), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": nonNil(orders)})
}

// GetOrder - visible to the two participants only
func (h *Handler) GetOrder(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	o, err := h.data.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return middleware.Fail(c, err)
	}
	if !o.IsParticipant(uid) {
		return middleware.Fail(c, apperr.ErrUnauthorized.With("not a participant of this order"))
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) PayOrder(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var req payRequest
	if err := middleware.Bind(c, &req); err != nil {
		return middleware.Fail(c, err)
	}
	o, err := h.data.CapturePayment(c.Request().Context(), c.Param("id"), uid, req.Method)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) CompleteOrder(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	o, err := h.data.CompleteOrder(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) CancelOrder(c echo.Context) error {
	return h.withReason(c, h.data.CancelOrder)
}

func (h *Handler) DisputeOrder(c echo.Context) error {
	return h.withReason(c, h.data.RaiseDispute)
}

func (h *Handler) withReason(c echo.Context, op func(context.Context, string, string, string) (models.Order, error)) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var req reasonRequest
	if err := middleware.Bind(c, &req); err != nil {
		return middleware.Fail(c, err)
	}
	o, err := op(c.Request().Context(), c.Param("id"), uid, req.Reason)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// =========================
// Reviews
// =========================

func (h *Handler) ReviewOrder(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var req CreateReviewRequest
	if err := middleware.Bind(c, &req); err != nil {
		return middleware.Fail(c, err)
	}
	r, err := h.data.CreateReview(c.Request().Context(), c.Param("id"), uid, req)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// UserReviews - reviews left on any gig the user owns, with a summary
func (h *Handler) UserReviews(c echo.Context) error {
	reviews, err := h.data.GetReviewsForUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews": nonNil(reviews),
		"summary": models.Summarize(reviews),
	})
}

// Register mounts the marketplace routes. requireUser guards every write and
// the per-user reads.
func (h *Handler) Register(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.GET("/categories", h.ListCategories)
	g.GET("/gigs", h.ListGigs)
	g.GET("/gigs/:id", h.GetGig)
	g.GET("/users/:id/gigs", h.UserGigs)
	g.GET("/users/:id/reviews", h.UserReviews)

	g.GET("/gigs/me", h.MyGigs, requireUser)
	g.POST("/gigs", h.CreateGig, requireUser)
	g.PATCH("/gigs/:id", h.UpdateGig, requireUser)
	g.POST("/gigs/:id/deactivate", h.DeactivateGig, requireUser)
	g.GET("/gigs/:id/bids", h.GigBids, requireUser)
	g.POST("/gigs/:id/bids", h.SubmitBid, requireUser)

	g.GET("/bids/me", h.MyBids, requireUser)
	g.POST("/bids/:id/accept", h.AcceptBid, requireUser)
	g.POST("/bids/:id/reject", h.RejectBid, requireUser)
	g.POST("/bids/:id/withdraw", h.WithdrawBid, requireUser)

	g.POST("/orders", h.CreateOrder, requireUser)
	g.GET("/orders", h.MyOrders, requireUser)
	g.GET("/orders/:id", h.GetOrder, requireUser)
	g.POST("/orders/:id/pay", h.PayOrder, requireUser)
	g.POST("/orders/:id/complete", h.CompleteOrder, requireUser)
	g.POST("/orders/:id/cancel", h.CancelOrder, requireUser)
	g.POST("/orders/:id/dispute", h.DisputeOrder, requireUser)
	g.POST("/orders/:id/review", h.ReviewOrder, requireUser)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
