package alerts

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/models"
)

// Source is what the notification handlers read and write through.
type Source interface {
	GetNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
}

type Handler struct {
	src Source
}

func NewHandler(src Source) *Handler { return &Handler{src: src} }

func (h *Handler) Register(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.GET("/notifications", h.ListNotifications, requireUser)
	g.POST("/notifications/:id/read", h.MarkNotificationRead, requireUser)
}

// ListNotifications returns current user's notifications, newest first
func (h *Handler) ListNotifications(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	notes, err := h.src.GetNotifications(c.Request().Context(), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	unread := 0
	for _, n := range notes {
		if !n.IsRead {
			unread++
		}
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notes,
		"unread":        unread,
	})
}

// MarkNotificationRead marks specific notification as read
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	if err := h.src.MarkNotificationRead(c.Request().Context(), c.Param("id"), uid); err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
