package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWT.
const (
	UserIDKey = "user_id"
	TokenKey  = "access_token"
)

// JWT verifies the HS256 bearer token issued by the auth backend and stores
// its subject under "user_id". Requests without a valid token get 401.
func JWT(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, raw, err := parseBearer(c.Request().Header.Get(echo.HeaderAuthorization), secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error(), "code": "unauthenticated"})
			}
			c.Set(UserIDKey, uid)
			c.Set(TokenKey, raw)
			return next(c)
		}
	}
}

// OptionalJWT is JWT without the 401. A missing token leaves "user_id" unset;
// a present but invalid token is still rejected.
func OptionalJWT(secret []byte) echo.MiddlewareFunc {
	strict := JWT(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := strict(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return withAuth(c)
		}
	}
}

func parseBearer(header string, secret []byte) (string, string, error) {
	if header == "" {
		return "", "", errors.New("missing authorization header")
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return "", "", errors.New("invalid authorization header format")
	}
	raw = strings.TrimSpace(raw)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid or expired token")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return "", "", errors.New("invalid token claims")
	}
	return sub, raw, nil
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c echo.Context) string {
	uid, _ := c.Get(UserIDKey).(string)
	return uid
}

// AccessToken returns the raw bearer token of an authenticated request.
func AccessToken(c echo.Context) string {
	tok, _ := c.Get(TokenKey).(string)
	return tok
}
