package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
)

// RequireToken gates routes behind a static Authorization header value.
// An empty configured token disables the check, for local development.
func RequireToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(header), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.APIResponse{
					Status:  http.StatusUnauthorized,
					Message: "Invalid Authorization header",
				})
			}

			return next(c)
		}
	}
}
