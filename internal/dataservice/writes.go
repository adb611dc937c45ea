package dataservice

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/auth"
	"github.com/sudo-init-do/studentmarket/internal/config"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
	"github.com/sudo-init-do/studentmarket/internal/supabase"
)

// UpdateUser applies a profile patch. Aggregates are not part of the patch
// and stay owned by the engines.
func (f *Facade) UpdateUser(ctx context.Context, id string, patch models.ProfilePatch) (models.User, error) {
	var out models.User
	err := f.primary.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		u, err := tx.GetUser(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(&u)
		u.FullName = strings.TrimSpace(u.FullName)
		if u.FullName == "" {
			return apperr.ErrInvalidInput.With("full_name cannot be empty")
		}
		u.UpdatedAt = f.now()
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}

func (f *Facade) MarkNotificationRead(ctx context.Context, id, userID string) error {
	return f.primary.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.MarkNotificationRead(ctx, id, userID)
	})
}

func (f *Facade) StartConversation(ctx context.Context, userID, otherID, gigID string) (models.Conversation, error) {
	return f.messages.StartConversation(ctx, userID, otherID, gigID)
}

func (f *Facade) SendMessage(ctx context.Context, conversationID, senderID, content string) (models.Message, error) {
	return f.messages.SendMessage(ctx, conversationID, senderID, content)
}

// =========================
// Sessions
// =========================

// SignUp registers with the auth backend and creates the marketplace profile.
// The email policy is checked before any backend call.
func (f *Facade) SignUp(ctx context.Context, email, password string, p models.SignUpProfile) (supabase.AuthUser, error) {
	email, err := auth.CheckInstitutionalEmail(email)
	if err != nil {
		return supabase.AuthUser{}, err
	}
	if err := auth.CheckPassword(password); err != nil {
		return supabase.AuthUser{}, err
	}
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return supabase.AuthUser{}, apperr.ErrInvalidInput.With("full_name is required")
	}
	if f.mode != config.ModeLive {
		return supabase.AuthUser{}, apperr.ErrNotConfigured.With("sign up needs a live backend")
	}

	au, err := f.auth.SignUp(ctx, email, password, map[string]any{
		"full_name": p.FullName,
		"college":   p.College,
	})
	if err != nil {
		return supabase.AuthUser{}, err
	}

	at := f.now()
	u := models.User{
		ID:         au.ID,
		Email:      email,
		FullName:   p.FullName,
		College:    strings.TrimSpace(p.College),
		Major:      strings.TrimSpace(p.Major),
		Year:       strings.TrimSpace(p.Year),
		City:       strings.TrimSpace(p.City),
		Skills:     []string{},
		IsVerified: au.Confirmed(),
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	err = f.primary.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateUser(ctx, u)
	})
	if err != nil {
		f.log.WithFields(logrus.Fields{"user_id": au.ID, "error": err.Error()}).Error("auth account created but profile insert failed")
		return supabase.AuthUser{}, err
	}
	f.log.WithField("user_id", au.ID).Info("user signed up")
	return au, nil
}

func (f *Facade) SignIn(ctx context.Context, email, password string) (supabase.Session, error) {
	email, err := auth.NormalizeEmail(email)
	if err != nil {
		return supabase.Session{}, err
	}
	if password == "" {
		return supabase.Session{}, apperr.ErrInvalidInput.With("password is required")
	}
	if f.mode != config.ModeLive {
		return supabase.Session{}, apperr.ErrNotConfigured.With("sign in needs a live backend")
	}
	return f.auth.SignIn(ctx, email, password)
}

// SignOut revokes the session. It is a no-op in fixture mode.
func (f *Facade) SignOut(ctx context.Context, accessToken string) error {
	if f.mode != config.ModeLive {
		return nil
	}
	return f.auth.SignOut(ctx, accessToken)
}

func (f *Facade) ResendConfirmationEmail(ctx context.Context, email string) error {
	email, err := auth.NormalizeEmail(email)
	if err != nil {
		return err
	}
	if f.mode != config.ModeLive {
		return apperr.ErrNotConfigured.With("confirmation emails need a live backend")
	}
	return f.auth.Resend(ctx, email)
}

// GetSession returns the identity behind an access token as the auth
// backend sees it.
func (f *Facade) GetSession(ctx context.Context, accessToken string) (supabase.AuthUser, error) {
	if f.mode != config.ModeLive {
		return supabase.AuthUser{}, apperr.ErrNotConfigured.With("sessions need a live backend")
	}
	return f.auth.GetUser(ctx, accessToken)
}
