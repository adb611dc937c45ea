// Package auth serves the session endpoints. Passwords and tokens are held by
// the hosted auth backend; this package only applies the signup policy and
// forwards to the data facade.
package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/supabase"
)

// Source is the facade slice the auth handlers use.
type Source interface {
	SignUp(ctx context.Context, email, password string, p models.SignUpProfile) (supabase.AuthUser, error)
	SignIn(ctx context.Context, email, password string) (supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResendConfirmationEmail(ctx context.Context, email string) error
	GetCurrentUser(ctx context.Context, userID string) (models.User, error)
}

type Handler struct {
	src Source
}

func NewHandler(src Source) *Handler { return &Handler{src: src} }

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	models.SignUpProfile
}

// ===== Signup =====
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := middleware.Bind(c, &req); err != nil {
		return middleware.Fail(c, err)
	}

	au, err := h.src.SignUp(c.Request().Context(), req.Email, req.Password, req.SignUpProfile)
	if err != nil {
		return middleware.Fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user_id":            au.ID,
		"email":              au.Email,
		"needs_confirmation": !au.Confirmed(),
		"message":            "Check your inbox to confirm your college email.",
	})
}

func (h *Handler) Register(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout, requireUser)
	g.POST("/resend", h.Resend)
}
