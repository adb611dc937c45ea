package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ===== Login =====
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := middleware.Bind(c, &req); err != nil {
		return middleware.Fail(c, err)
	}

	sess, err := h.src.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return middleware.Fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  sess.AccessToken,
		"refresh_token": sess.RefreshToken,
		"token_type":    sess.TokenType,
		"expires_in":    sess.ExpiresIn,
		"user_id":       sess.User.ID,
	})
}

// ===== Logout =====
func (h *Handler) Logout(c echo.Context) error {
	if err := h.src.SignOut(c.Request().Context(), middleware.AccessToken(c)); err != nil {
		return middleware.Fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ===== Resend confirmation =====
func (h *Handler) Resend(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := middleware.Bind(c, &req); err != nil {
		return middleware.Fail(c, err)
	}
	if err := h.src.ResendConfirmationEmail(c.Request().Context(), req.Email); err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Confirmation email sent"})
}
