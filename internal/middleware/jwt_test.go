package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func serve(mw echo.MiddlewareFunc, header string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "uid="+UserID(c))
	}, mw)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAcceptsValidToken(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec := serve(JWT(testSecret), "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid=user-1", rec.Body.String())
}

func TestJWTRejectsBadTokens(t *testing.T) {
	expired := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSub := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noExp := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "user-1"})
	hs512 := sign(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	for name, header := range map[string]string{
		"missing":   "",
		"scheme":    "Token " + expired,
		"expired":   "Bearer " + expired,
		"wrong key": "Bearer " + wrongKey,
		"no sub":    "Bearer " + noSub,
		"no exp":    "Bearer " + noExp,
		"alg":       "Bearer " + hs512,
	} {
		rec := serve(JWT(testSecret), header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestOptionalJWT(t *testing.T) {
	rec := serve(OptionalJWT(testSecret), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid=", rec.Body.String())

	rec = serve(OptionalJWT(testSecret), "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFailRendersKindAndCode(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, Fail(c, apperr.ErrNotPending.With("bid bid-1 is accepted")))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_pending", body["code"])
	assert.Equal(t, "bid bid-1 is accepted", body["error"])
}
