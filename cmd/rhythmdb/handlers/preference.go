package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/logger"
)

// PreferenceHandler serves per-user options
type PreferenceHandler struct {
	preferences *service.PreferenceService
	log         *logger.Logger
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferences *service.PreferenceService, log *logger.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		preferences: preferences,
		log:         log,
	}
}

// List returns all options of a user
// GET /pjsk/user/:im_id/preference
func (h *PreferenceHandler) List(c echo.Context) error {
	prefs, err := h.preferences.List(c.Request().Context(), c.Param("im_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.PreferenceListData{Options: prefs})
}

// Get returns one option
// GET /pjsk/user/:im_id/preference/:option
func (h *PreferenceHandler) Get(c echo.Context) error {
	pref, err := h.preferences.Get(c.Request().Context(), c.Param("im_id"), c.Param("option"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", pref)
}

// Set stores an option, creating it when absent
// PUT /pjsk/user/:im_id/preference
func (h *PreferenceHandler) Set(c echo.Context) error {
	var req models.Preference
	if err := c.Bind(&req); err != nil || req.Option == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	err := h.preferences.Set(c.Request().Context(), c.Param("im_id"), req.Option, req.Value)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Preference updated", nil)
}

// Delete removes an option
// DELETE /pjsk/user/:im_id/preference/:option
func (h *PreferenceHandler) Delete(c echo.Context) error {
	err := h.preferences.Delete(c.Request().Context(), c.Param("im_id"), c.Param("option"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Preference deleted", nil)
}
