// Package messaging stores two-party conversations and their messages.
// Delivery is pull-only: a new message becomes an in-app notification and
// an email task, nothing is pushed over a socket.
package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// MaxMessage caps a message body in characters.
const MaxMessage = 2000

// previewLen is how much of a message is kept as the conversation preview.
const previewLen = 120

// Dispatcher receives notifications after the write committed.
type Dispatcher interface {
	Dispatch(ctx context.Context, notes []models.Notification)
}

type Service struct {
	store    store.Store
	dispatch Dispatcher
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(st store.Store, d Dispatcher, log logrus.FieldLogger) *Service {
	return &Service{
		store:    st,
		dispatch: d,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartConversation opens a thread between userID and otherID, optionally
// about a gig. An existing thread for the same pair and gig is returned as is.
func (s *Service) StartConversation(ctx context.Context, userID, otherID, gigID string) (models.Conversation, error) {
	if otherID == "" {
		return models.Conversation{}, apperr.ErrInvalidInput.With("participant_id is required")
	}
	if otherID == userID {
		return models.Conversation{}, apperr.ErrInvalidInput.With("you cannot message yourself")
	}

	var out models.Conversation
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.GetUser(ctx, otherID); err != nil {
			return err
		}
		if gigID != "" {
			if _, err := tx.GetGig(ctx, gigID); err != nil {
				return err
			}
		}
		existing, err := tx.ListConversations(ctx, userID)
		if err != nil {
			return err
		}
		for _, c := range existing {
			if c.HasParticipant(otherID) && c.GigID == gigID {
				out = c
				return nil
			}
		}

		at := s.now()
		out = models.Conversation{
			ID:             uuid.NewString(),
			ParticipantIDs: []string{userID, otherID},
			GigID:          gigID,
			CreatedAt:      at,
			UpdatedAt:      at,
		}
		return tx.CreateConversation(ctx, out)
	})
	return out, err
}

// SendMessage appends a message and notifies the other participant.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, apperr.ErrInvalidInput.With("content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessage {
		return models.Message{}, apperr.ErrInvalidInput.With("message exceeds %d characters", MaxMessage)
	}

	var (
		out  models.Message
		note models.Notification
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		conv, err := tx.GetConversation(ctx, conversationID)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(senderID) {
			return apperr.ErrUnauthorized.With("not a participant in this conversation")
		}

		at := s.now()
		out = models.Message{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			SenderID:       senderID,
			Content:        content,
			CreatedAt:      at,
		}
		if err := tx.CreateMessage(ctx, out); err != nil {
			return err
		}
		conv.LastMessage = preview(content)
		conv.UpdatedAt = at
		if err := tx.UpdateConversation(ctx, conv); err != nil {
			return err
		}

		note = models.Notification{
			ID:        uuid.NewString(),
			UserID:    recipient(conv, senderID),
			Type:      models.NotifyMessageReceived,
			Title:     "New message",
			Body:      preview(content),
			Reference: conv.ID,
			CreatedAt: at,
		}
		return tx.CreateNotification(ctx, note)
	})
	if err != nil {
		return models.Message{}, err
	}

	s.log.WithFields(logrus.Fields{"conversation_id": conversationID, "sender_id": senderID}).Debug("message stored")
	if s.dispatch != nil && note.UserID != "" {
		s.dispatch.Dispatch(context.WithoutCancel(ctx), []models.Notification{note})
	}
	return out, nil
}

func recipient(c models.Conversation, senderID string) string {
	for _, p := range c.ParticipantIDs {
		if p != senderID {
			return p
		}
	}
	return ""
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	r := []rune(s)
	return fmt.Sprintf("%s...", string(r[:previewLen]))
}

// Unread counts messages in msgs addressed to userID that are still unread.
func Unread(msgs []models.Message, userID string) int {
	n := 0
	for _, m := range msgs {
		if m.SenderID != userID && !m.IsRead {
			n++
		}
	}
	return n
}
