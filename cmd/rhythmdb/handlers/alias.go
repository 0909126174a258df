package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/logger"
)

// AliasHandler serves the pjsk alias read path, admin deletions and
// per-group aliases
type AliasHandler struct {
	aliases    *service.AliasService
	moderation *service.ModerationService
	log        *logger.Logger
}

// NewAliasHandler creates a new alias handler
func NewAliasHandler(aliases *service.AliasService, moderation *service.ModerationService, log *logger.Logger) *AliasHandler {
	return &AliasHandler{
		aliases:    aliases,
		moderation: moderation,
		log:        log,
	}
}

// aliasTypeFromKey turns the "music-id" / "character-id" path segment into
// an alias type
func aliasTypeFromKey(key string) string {
	return strings.TrimSuffix(key, "-id")
}

// GetAliasTypeIDs resolves an alias text to target ids
// GET /pjsk/alias/:key?alias=xxx&group_id=yyy
func (h *AliasHandler) GetAliasTypeIDs(c echo.Context) error {
	alias := c.QueryParam("alias")
	if alias == "" {
		return respond(c, http.StatusBadRequest, "Missing alias parameter", nil)
	}

	aliasType := aliasTypeFromKey(c.Param("key"))
	var groupID *string
	if g := c.QueryParam("group_id"); g != "" {
		groupID = &g
	}

	ids, err := h.aliases.GetAliasTypeIDs(c.Request().Context(), aliasType, alias, groupID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.MatchIDsData{MatchIDs: ids})
}

// GetAliases returns all aliases of a target
// GET /pjsk/alias/:alias_type/:alias_type_id?group_id=yyy
func (h *AliasHandler) GetAliases(c echo.Context) error {
	aliasTypeID, err := strconv.Atoi(c.Param("alias_type_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid alias type id", nil)
	}

	var groupID *string
	if g := c.QueryParam("group_id"); g != "" {
		groupID = &g
	}

	aliases, err := h.aliases.GetAliases(c.Request().Context(), c.Param("alias_type"), aliasTypeID, groupID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.AliasListData{Aliases: aliases})
}

// AddAlias submits a new alias: published immediately for admins, queued
// for review otherwise
// POST /pjsk/alias/:alias_type/:alias_type_id/add
func (h *AliasHandler) AddAlias(c echo.Context) error {
	aliasTypeID, err := strconv.Atoi(c.Param("alias_type_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid alias type id", nil)
	}

	var req models.AliasRequest
	if err := c.Bind(&req); err != nil || req.Alias == "" || req.ImID == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	outcome, err := h.moderation.Submit(c.Request().Context(), c.Param("alias_type"), aliasTypeID, req.Alias, req.ImID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if outcome == service.OutcomeQueued {
		return respond(c, http.StatusAccepted, "Alias submitted for review.", nil)
	}
	return respond(c, http.StatusCreated, "Alias added.", nil)
}

// RemoveAlias deletes a published alias (admins only)
// DELETE /pjsk/alias/:alias_type/:alias_type_id/:internal_id
func (h *AliasHandler) RemoveAlias(c echo.Context) error {
	aliasTypeID, err := strconv.Atoi(c.Param("alias_type_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid alias type id", nil)
	}
	internalID, err := strconv.ParseInt(c.Param("internal_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid internal id", nil)
	}

	var req models.AliasRequest
	if err := c.Bind(&req); err != nil || req.Alias == "" || req.ImID == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	err = h.aliases.RetractAlias(c.Request().Context(), c.Param("alias_type"), aliasTypeID, req.Alias, internalID, req.ImID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Alias deleted", nil)
}

// GetGroupAliases returns all aliases a group holds for a target
// GET /pjsk/alias/group/:group_id/:alias_type/:alias_type_id
func (h *AliasHandler) GetGroupAliases(c echo.Context) error {
	aliasTypeID, err := strconv.Atoi(c.Param("alias_type_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid alias type id", nil)
	}

	groupID := c.Param("group_id")
	aliases, err := h.aliases.GetAliases(c.Request().Context(), c.Param("alias_type"), aliasTypeID, &groupID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.AliasListData{Aliases: aliases})
}

// GetGroupAliasTypeIDs resolves a group-scoped alias text to target ids
// GET /pjsk/alias/group/:key?alias=xxx&group_id=yyy
func (h *AliasHandler) GetGroupAliasTypeIDs(c echo.Context) error {
	alias := c.QueryParam("alias")
	groupID := c.QueryParam("group_id")
	if alias == "" || groupID == "" {
		return respond(c, http.StatusBadRequest, "Missing alias or group_id parameter", nil)
	}

	ids, err := h.aliases.GetAliasTypeIDs(c.Request().Context(), aliasTypeFromKey(c.Param("key")), alias, &groupID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.MatchIDsData{MatchIDs: ids})
}

// AddGroupAlias adds a per-group alias (no moderation)
// POST /pjsk/alias/group/:group_id/:alias_type/:alias_type_id
func (h *AliasHandler) AddGroupAlias(c echo.Context) error {
	aliasTypeID, err := strconv.Atoi(c.Param("alias_type_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid alias type id", nil)
	}

	var req models.AliasRequest
	if err := c.Bind(&req); err != nil || req.Alias == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	_, err = h.aliases.PublishGroupAlias(c.Request().Context(), c.Param("group_id"), c.Param("alias_type"), aliasTypeID, req.Alias)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusCreated, "Group alias added", nil)
}

// RemoveGroupAlias deletes a per-group alias
// DELETE /pjsk/alias/group/:group_id/:alias_type/:alias_type_id
func (h *AliasHandler) RemoveGroupAlias(c echo.Context) error {
	aliasTypeID, err := strconv.Atoi(c.Param("alias_type_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid alias type id", nil)
	}

	var req models.AliasRequest
	if err := c.Bind(&req); err != nil || req.Alias == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	err = h.aliases.RetractGroupAlias(c.Request().Context(), c.Param("group_id"), c.Param("alias_type"), aliasTypeID, req.Alias)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Group alias deleted", nil)
}
