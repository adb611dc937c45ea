package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-init-do/studentmarket/internal/config"
	"github.com/sudo-init-do/studentmarket/internal/dataservice"
	"github.com/sudo-init-do/studentmarket/internal/logging"
	"github.com/sudo-init-do/studentmarket/internal/middleware"
	"github.com/sudo-init-do/studentmarket/internal/store/memory"
)

func newServer(t *testing.T, as string) *echo.Echo {
	t.Helper()
	f, err := dataservice.New(dataservice.Options{
		Mode:    config.ModeFixture,
		Primary: memory.NewSeeded(),
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)

	e := echo.New()
	withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if as == "" {
				return middleware.Unauthenticated(c)
			}
			c.Set(middleware.UserIDKey, as)
			return next(c)
		}
	}
	NewHandler(f).Register(e.Group(""), withUser)
	return e
}

func TestPublicProfileHidesPrivateFields(t *testing.T) {
	e := newServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/users/user-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Priya Sharma", body["full_name"])
	assert.NotContains(t, body, "email")
	assert.NotContains(t, body, "wallet_balance")
	reviews := body["reviews"].(map[string]any)
	assert.EqualValues(t, 1, reviews["count"])

	req = httptest.NewRequest(http.MethodGet, "/users/nobody", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfileIgnoresAggregates(t *testing.T) {
	e := newServer(t, "user-2")
	req := httptest.NewRequest(http.MethodPatch, "/users/me",
		strings.NewReader(`{"bio":"Data nerd","wallet_balance":999999,"reputation_score":1000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Data nerd", body["bio"])
	assert.EqualValues(t, 0, body["wallet_balance"])
}

func TestUpdateProfileNeedsUser(t *testing.T) {
	e := newServer(t, "")
	req := httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatsForSignedInUser(t *testing.T) {
	e := newServer(t, "user-1")
	req := httptest.NewRequest(http.MethodGet, "/me/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 299, body["total_earnings"])
	assert.EqualValues(t, 2, body["active_gigs"])
	assert.EqualValues(t, 1, body["total_orders"])
	assert.EqualValues(t, 5, body["average_rating"])
	assert.EqualValues(t, 0, body["bid_win_rate"])

	e = newServer(t, "")
	req = httptest.NewRequest(http.MethodGet, "/me/stats", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
