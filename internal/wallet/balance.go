package wallet

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/models"
)

// Source is the read side the wallet handlers need.
type Source interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetWalletTransactions(ctx context.Context, userID string) ([]models.WalletTransaction, error)
}

type Handler struct {
	src Source
}

func NewHandler(src Source) *Handler { return &Handler{src: src} }

func (h *Handler) Register(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.GET("/wallet", h.Balance, requireUser)
}

// Balance returns the authenticated user's wallet balance and ledger history.
func (h *Handler) Balance(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	ctx := c.Request().Context()

	u, err := h.src.GetUserByID(ctx, uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	txs, err := h.src.GetWalletTransactions(ctx, uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	if txs == nil {
		txs = []models.WalletTransaction{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":        uid,
		"balance":        u.WalletBalance,
		"total_earnings": u.TotalEarnings,
		"transactions":   txs,
	})
}
