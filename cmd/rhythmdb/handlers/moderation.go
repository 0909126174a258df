package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/logger"
)

// ModerationHandler serves the alias review queue
type ModerationHandler struct {
	moderation *service.ModerationService
	log        *logger.Logger
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(moderation *service.ModerationService, log *logger.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderation: moderation,
		log:        log,
	}
}

// ListPending dumps the review queue (admins only)
// GET /pjsk/alias/pending?im_id=xxx
func (h *ModerationHandler) ListPending(c echo.Context) error {
	imID := c.QueryParam("im_id")
	if imID == "" {
		return respond(c, http.StatusBadRequest, "Missing im_id parameter", nil)
	}

	pending, err := h.moderation.ListPending(c.Request().Context(), imID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.PendingAliasListData{
		Rows:    len(pending),
		Results: pending,
	})
}

// Approve publishes a pending submission (admins only)
// POST /pjsk/alias/pending/:pending_id/approve
func (h *ModerationHandler) Approve(c echo.Context) error {
	pendingID, err := strconv.ParseInt(c.Param("pending_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid pending id", nil)
	}

	var req models.ReviewRequest
	if err := c.Bind(&req); err != nil || req.ImID == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	if err := h.moderation.Approve(c.Request().Context(), pendingID, req.ImID); err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusCreated, "Alias approved and added.", nil)
}

// Reject declines a pending submission with a recorded reason (admins only)
// POST /pjsk/alias/pending/:pending_id/reject
func (h *ModerationHandler) Reject(c echo.Context) error {
	pendingID, err := strconv.ParseInt(c.Param("pending_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid pending id", nil)
	}

	var req models.RejectRequest
	if err := c.Bind(&req); err != nil || req.ImID == "" || req.Reason == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	if err := h.moderation.Reject(c.Request().Context(), pendingID, req.ImID, req.Reason); err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusCreated, "Alias rejected and logged.", nil)
}

// Status reports where a submission stands. A pending submission is 202,
// a rejected one is 400 with the reason as the message, and anything else
// (approved included) is 404.
// GET /pjsk/alias/status/:pending_id
func (h *ModerationHandler) Status(c echo.Context) error {
	pendingID, err := strconv.ParseInt(c.Param("pending_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid pending id", nil)
	}

	status, err := h.moderation.Status(c.Request().Context(), pendingID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if status.State == service.ReviewStateRejected {
		return respond(c, http.StatusBadRequest, status.Reason, nil)
	}
	return respond(c, http.StatusAccepted, "This alias is pending review.", nil)
}
