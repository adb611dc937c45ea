package user

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
)

// GET /users/:id
func (h *Handler) GetPublicProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	u, err := h.src.GetUserByID(ctx, userID)
	if err != nil {
		return middleware.Fail(c, err)
	}
	reviews, err := h.src.GetReviewsForUser(ctx, userID)
	if err != nil {
		return middleware.Fail(c, err)
	}

	return c.JSON(http.StatusOK, publicProfile(u, reviews))
}
