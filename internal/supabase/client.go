// Package supabase is a thin client for the hosted backend's auth REST API
// (GoTrue). Only the endpoints the marketplace needs are implemented.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
)

// Config configures the auth client.
type Config struct {
	ProjectURL string
	AnonKey    string
	// RedirectURL is where confirmation emails send the user back to.
	RedirectURL string
}

// AuthUser is the identity record the auth backend returns.
type AuthUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Confirmed reports whether the email address has been verified.
func (u AuthUser) Confirmed() bool { return u.EmailConfirmedAt != nil }

// Session is an authenticated session issued by the password grant.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	User         AuthUser `json:"user"`
}

// Client performs auth REST calls against a single project.
type Client struct {
	cfg    Config
	base   string
	client *http.Client
}

// New creates an auth client. A nil httpClient uses a 10s timeout client.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.ProjectURL == "" {
		return nil, apperr.ErrConfig.With("project URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, apperr.ErrConfig.With("anon key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		cfg:    cfg,
		base:   strings.TrimRight(cfg.ProjectURL, "/") + "/auth/v1",
		client: httpClient,
	}, nil
}

// SignUp registers a new identity. metadata is stored as user_metadata.
// The returned user is unconfirmed until the email link is followed.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (AuthUser, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	}
	var u AuthUser
	err := c.do(ctx, http.MethodPost, c.withRedirect("/signup"), "", body, &u)
	return u, err
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "",
		map[string]any{"email": email, "password": password}, &s)
	return s, err
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// Resend sends the signup confirmation email again.
func (c *Client) Resend(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, c.withRedirect("/resend"), "",
		map[string]any{"type": "signup", "email": email}, nil)
}

// GetUser resolves accessToken to its identity.
func (c *Client) GetUser(ctx context.Context, accessToken string) (AuthUser, error) {
	var u AuthUser
	err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &u)
	return u, err
}

func (c *Client) withRedirect(path string) string {
	if c.cfg.RedirectURL == "" {
		return path
	}
	return path + "?redirect_to=" + url.QueryEscape(c.cfg.RedirectURL)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var rd io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apperr.New(apperr.Internal, "encode", "encode auth request").Wrap(err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return apperr.New(apperr.Internal, "request", "build auth request").Wrap(err)
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" {
		token = c.cfg.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.ErrTransient.With("auth backend unreachable").Wrap(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperr.ErrTransient.With("read auth response").Wrap(err)
	}
	if resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.New(apperr.Internal, "decode", "decode auth response").Wrap(err)
	}
	return nil
}

// errorBody covers the shapes GoTrue uses across versions.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e errorBody) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func statusError(status int, raw []byte) error {
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.text()
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return apperr.ErrTransient.With("auth backend: %s", msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.ErrUnauthorized.With("%s", msg)
	case status == http.StatusNotFound:
		return apperr.ErrNotFound.With("%s", msg)
	default:
		return apperr.ErrInvalidInput.With("%s", msg)
	}
}
