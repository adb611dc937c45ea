package user

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/models"
)

// PATCH /users/me. Only profile fields bind; reputation, earnings and the
// wallet are not part of models.ProfilePatch.
func (h *Handler) UpdateProfile(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return middleware.Unauthenticated(c)
	}

	var patch models.ProfilePatch
	if err := middleware.Bind(c, &patch); err != nil {
		return middleware.Fail(c, err)
	}

	u, err := h.src.UpdateUser(c.Request().Context(), userID, patch)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
