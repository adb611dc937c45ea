package messaging

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/models"
)

// Source is the facade slice the messaging handlers use.
type Source interface {
	GetConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	GetMessages(ctx context.Context, conversationID, userID string, since time.Time) ([]models.Message, error)
	StartConversation(ctx context.Context, userID, otherID, gigID string) (models.Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID, content string) (models.Message, error)
}

type Handler struct {
	src Source
}

func NewHandler(src Source) *Handler { return &Handler{src: src} }

// ListConversations - threads the current user takes part in, latest first
func (h *Handler) ListConversations(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	convs, err := h.src.GetConversations(c.Request().Context(), uid)
	if err != nil {
		return middleware.Fail(c, err)
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": convs})
}

// StartConversation - open (or reuse) a thread with another user
func (h *Handler) StartConversation(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var body struct {
		ParticipantID string `json:"participant_id"`
		GigID         string `json:"gig_id"`
	}
	if err := middleware.Bind(c, &body); err != nil {
		return middleware.Fail(c, err)
	}
	conv, err := h.src.StartConversation(c.Request().Context(), uid, body.ParticipantID, body.GigID)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// ListMessages - the thread in chronological order. The optional "since"
// query (RFC3339) returns only newer messages for incremental polling.
func (h *Handler) ListMessages(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}

	var since time.Time
	if raw := c.QueryParam("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return middleware.Fail(c, apperr.ErrInvalidInput.With("invalid since timestamp, use RFC3339"))
		}
		since = t
	}

	msgs, err := h.src.GetMessages(c.Request().Context(), c.Param("id"), uid, since)
	if err != nil {
		return middleware.Fail(c, err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs, "unread": Unread(msgs, uid)})
}

// SendMessage - post into a thread the user participates in
func (h *Handler) SendMessage(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return middleware.Unauthenticated(c)
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := middleware.Bind(c, &body); err != nil {
		return middleware.Fail(c, err)
	}
	m, err := h.src.SendMessage(c.Request().Context(), c.Param("id"), uid, body.Content)
	if err != nil {
		return middleware.Fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Register(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.GET("/conversations", h.ListConversations, requireUser)
	g.POST("/conversations", h.StartConversation, requireUser)
	g.GET("/conversations/:id/messages", h.ListMessages, requireUser)
	g.POST("/conversations/:id/messages", h.SendMessage, requireUser)
}
