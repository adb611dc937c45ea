package user

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/models"
)

// Source is the facade slice the profile handlers use.
type Source interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetReviewsForUser(ctx context.Context, userID string) ([]models.Review, error)
	UpdateUser(ctx context.Context, id string, patch models.ProfilePatch) (models.User, error)
	GetUserStats(ctx context.Context, userID string) (models.UserStats, error)
}

type Handler struct {
	src Source
}

func NewHandler(src Source) *Handler { return &Handler{src: src} }

func (h *Handler) Register(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.PATCH("/users/me", h.UpdateProfile, requireUser)
	g.GET("/me/stats", h.Stats, requireUser)
	g.GET("/users/:id", h.GetPublicProfile)
}
