package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/logger"
)

// BindingHandler serves pjsk user game-account bindings
type BindingHandler struct {
	bindings *service.BindingService
	log      *logger.Logger
}

// NewBindingHandler creates a new binding handler
func NewBindingHandler(bindings *service.BindingService, log *logger.Logger) *BindingHandler {
	return &BindingHandler{
		bindings: bindings,
		log:      log,
	}
}

// List returns a user's bindings, optionally narrowed to one server
// GET /pjsk/user/:im_id/binding?server=jp
func (h *BindingHandler) List(c echo.Context) error {
	var server *string
	if s := c.QueryParam("server"); s != "" {
		server = &s
	}

	bindings, err := h.bindings.List(c.Request().Context(), c.Param("im_id"), server)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.BindingListData{Bindings: bindings})
}

// Add creates a binding
// POST /pjsk/user/:im_id/binding
func (h *BindingHandler) Add(c echo.Context) error {
	var req models.AddBindingRequest
	if err := c.Bind(&req); err != nil || req.Server == "" || req.UserID == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	bindID, err := h.bindings.Add(c.Request().Context(), c.Param("im_id"), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusCreated, "Binding added", models.BindingCreatedData{BindID: bindID})
}

// GetDefault resolves a default binding slot
// GET /pjsk/user/:im_id/binding/default?server=jp
func (h *BindingHandler) GetDefault(c echo.Context) error {
	server := c.QueryParam("server")
	if server == "" {
		server = models.DefaultServer
	}

	binding, err := h.bindings.GetDefault(c.Request().Context(), c.Param("im_id"), server)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", binding)
}

// SetDefault points a default binding slot at one of the user's bindings
// PUT /pjsk/user/:im_id/binding/default
func (h *BindingHandler) SetDefault(c echo.Context) error {
	var req models.SetDefaultBindingRequest
	if err := c.Bind(&req); err != nil || req.Server == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	err := h.bindings.SetDefault(c.Request().Context(), c.Param("im_id"), req.Server, req.BindID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Set default binding for "+req.Server, nil)
}

// DeleteDefault clears a default binding slot
// DELETE /pjsk/user/:im_id/binding/default
func (h *BindingHandler) DeleteDefault(c echo.Context) error {
	var req models.SetDefaultBindingRequest
	if err := c.Bind(&req); err != nil || req.Server == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	err := h.bindings.DeleteDefault(c.Request().Context(), c.Param("im_id"), req.Server)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Deleted default binding for "+req.Server, nil)
}

// SetVisibility toggles whether a binding's game uid may be shown
// PATCH /pjsk/user/:im_id/binding/:bind_id
func (h *BindingHandler) SetVisibility(c echo.Context) error {
	bindID, err := strconv.Atoi(c.Param("bind_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid bind id", nil)
	}

	var req models.VisibilityRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	err = h.bindings.SetVisibility(c.Request().Context(), c.Param("im_id"), bindID, req.Visible)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Visibility updated", nil)
}

// Delete removes a binding and any default slots pointing at it
// DELETE /pjsk/user/:im_id/binding/:bind_id
func (h *BindingHandler) Delete(c echo.Context) error {
	bindID, err := strconv.Atoi(c.Param("bind_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid bind id", nil)
	}

	err = h.bindings.Delete(c.Request().Context(), c.Param("im_id"), bindID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Binding deleted", nil)
}
