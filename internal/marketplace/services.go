package marketplace

import (
	"context"

	"github.com/google/uuid"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// =========================
// CreateGig - a user lists a service offer or a help request
// =========================
func (s *Service) CreateGig(ctx context.Context, ownerID string, in models.GigInput) (models.Gig, error) {
	in.Normalize()
	if p := in.Problem(); p != "" {
		return models.Gig{}, apperr.ErrInvalidInput.With("%s", p)
	}

	var out models.Gig
	err := s.run(ctx, "gig", "create", func(ctx context.Context, u *unit) error {
		if err := checkCategory(ctx, u.tx, in.CategoryID); err != nil {
			return err
		}
		if _, err := u.tx.GetUser(ctx, ownerID); err != nil {
			return err
		}
		out = models.Gig{
			ID:                uuid.NewString(),
			UserID:            ownerID,
			CategoryID:        in.CategoryID,
			Title:             in.Title,
			Description:       in.Description,
			Requirements:      in.Requirements,
			GigType:           in.GigType,
			Price:             in.Price,
			DeliveryDays:      in.DeliveryDays,
			Tags:              in.Tags,
			IsActive:          true,
			SkillLevel:        in.SkillLevel,
			CollaborationType: in.CollaborationType,
			CreatedAt:         u.at,
			UpdatedAt:         u.at,
		}
		return u.tx.CreateGig(ctx, out)
	})
	return out, err
}

// =========================
// UpdateGig - owner edits a listing
// =========================
// gig_type, rating and total_orders are not editable.
func (s *Service) UpdateGig(ctx context.Context, gigID, actingUserID string, patch models.GigPatch) (models.Gig, error) {
	var out models.Gig
	err := s.run(ctx, "gig", "update", func(ctx context.Context, u *unit) error {
		g, err := u.tx.GetGig(ctx, gigID)
		if err != nil {
			return err
		}
		if g.UserID != actingUserID {
			return apperr.ErrUnauthorized.With("only the owner can edit this gig")
		}
		in := patch.Apply(g)
		in.Normalize()
		if p := in.Problem(); p != "" {
			return apperr.ErrInvalidInput.With("%s", p)
		}
		if in.CategoryID != g.CategoryID {
			if err := checkCategory(ctx, u.tx, in.CategoryID); err != nil {
				return err
			}
		}

		g.CategoryID = in.CategoryID
		g.Title = in.Title
		g.Description = in.Description
		g.Requirements = in.Requirements
		g.Price = in.Price
		g.DeliveryDays = in.DeliveryDays
		g.Tags = in.Tags
		g.SkillLevel = in.SkillLevel
		g.CollaborationType = in.CollaborationType
		g.UpdatedAt = u.at
		if err := u.tx.UpdateGig(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

// =========================
// DeactivateGig - owner hides a listing (soft delete)
// =========================
func (s *Service) DeactivateGig(ctx context.Context, gigID, actingUserID string) (models.Gig, error) {
	var out models.Gig
	err := s.run(ctx, "gig", "deactivate", func(ctx context.Context, u *unit) error {
		g, err := u.tx.GetGig(ctx, gigID)
		if err != nil {
			return err
		}
		if g.UserID != actingUserID {
			return apperr.ErrUnauthorized.With("only the owner can deactivate this gig")
		}
		if !g.IsActive {
			return apperr.ErrAlreadyTerminal.With("gig is already inactive")
		}
		g.IsActive = false
		g.UpdatedAt = u.at
		if err := u.tx.UpdateGig(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

func checkCategory(ctx context.Context, r store.Reader, id string) error {
	cats, err := r.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		if c.ID == id {
			return nil
		}
	}
	return apperr.ErrInvalidInput.With("unknown category %q", id)
}
