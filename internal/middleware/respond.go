package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
)

// Fail writes err as {"error","code"} with the status of its kind. Internal
// errors are logged here since their detail never reaches the client.
func Fail(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logrus.WithFields(logrus.Fields{
			"path":  c.Path(),
			"code":  apperr.CodeOf(err),
			"error": err.Error(),
		}).Error("request failed")
	}
	return c.JSON(status, echo.Map{
		"error": apperr.Message(err),
		"code":  apperr.CodeOf(err),
	})
}

// Bind decodes the request body into v. Decode failures are validation errors.
func Bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.ErrInvalidInput.With("invalid request body")
	}
	return nil
}

// Unauthenticated is the 401 sent when a handler needs a user and has none.
func Unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "code": "unauthenticated"})
}
