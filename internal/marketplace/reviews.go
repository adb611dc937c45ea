package marketplace

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// =========================
// CreateReview - buyer rates a completed order
// =========================
// Gig rating and the seller's reputation are recomputed from all review rows
// in the same transaction.
func (s *Service) CreateReview(ctx context.Context, orderID, actingUserID string, req CreateReviewRequest) (models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return models.Review{}, apperr.ErrInvalidRating
	}
	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > models.MaxReviewComment {
		return models.Review{}, apperr.ErrInvalidInput.With("comment too long (max %d characters)", models.MaxReviewComment)
	}

	peek, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Review{}, err
	}

	var out models.Review
	err = s.run(ctx, "review", "create", func(ctx context.Context, u *unit) error {
		gig, err := u.tx.GetGig(ctx, peek.GigID)
		if err != nil {
			return err
		}
		o, err := u.tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.BuyerID != actingUserID {
			return apperr.ErrUnauthorized.With("only the buyer can review this order")
		}
		if o.Status != models.OrderCompleted {
			return apperr.ErrNotCompleted.With("order is %s", o.Status)
		}
		existing, err := u.tx.ListReviews(ctx, store.ReviewFilter{OrderID: o.ID})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return apperr.ErrAlreadyReviewed
		}

		out = models.Review{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			GigID:      o.GigID,
			ReviewerID: o.BuyerID,
			RevieweeID: o.SellerID,
			Rating:     req.Rating,
			Comment:    comment,
			CreatedAt:  u.at,
		}
		if err := u.tx.CreateReview(ctx, out); err != nil {
			return err
		}
		out.GigTitle = gig.Title

		onGig, err := u.tx.ListReviews(ctx, store.ReviewFilter{GigID: gig.ID})
		if err != nil {
			return err
		}
		gig.Rating = models.GigRating(onGig)
		gig.UpdatedAt = u.at
		if err := u.tx.UpdateGig(ctx, gig); err != nil {
			return err
		}

		seller, err := u.tx.GetUser(ctx, o.SellerID)
		if err != nil {
			return err
		}
		received, err := u.tx.ListReviews(ctx, store.ReviewFilter{RevieweeID: seller.ID})
		if err != nil {
			return err
		}
		seller.ReputationScore = models.ReputationScore(received)
		seller.UpdatedAt = u.at
		if err := u.tx.UpdateUser(ctx, seller); err != nil {
			return err
		}

		return u.notify(ctx, seller.ID, models.NotifyReviewReceived, "New review",
			fmt.Sprintf("You received a %d-star review on %q", req.Rating, gig.Title), out.ID)
	})
	return out, err
}
