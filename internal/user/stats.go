package user

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
)

// GET /me/stats
func (h *Handler) Stats(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return middleware.Unauthenticated(c)
	}

	stats, err := h.src.GetUserStats(c.Request().Context(), userID)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
