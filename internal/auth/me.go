package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
)

// Me returns the current user's profile. Mount it behind OptionalJWT: in
// fixture mode an anonymous request is served the demo user.
func (h *Handler) Me(c echo.Context) error {
	u, err := h.src.GetCurrentUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
