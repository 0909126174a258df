package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/logger"
)

// respond writes the standard response envelope
func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, models.APIResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// respondError maps service sentinel errors to HTTP status codes.
// Unrecognized errors become 500 and are logged; their detail stays out of
// the response body.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidAliasType), errors.Is(err, service.ErrInvalidArgument):
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrPermissionDenied):
		return respond(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		return respond(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrConflict):
		return respond(c, http.StatusConflict, err.Error(), nil)
	default:
		log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		return respond(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
