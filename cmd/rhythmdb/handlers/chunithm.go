package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/logger"
)

// ChunithmHandler serves chunithm aliases and aime-card bindings
type ChunithmHandler struct {
	chunithm *service.ChunithmService
	log      *logger.Logger
}

// NewChunithmHandler creates a new chunithm handler
func NewChunithmHandler(chunithm *service.ChunithmService, log *logger.Logger) *ChunithmHandler {
	return &ChunithmHandler{
		chunithm: chunithm,
		log:      log,
	}
}

// GetMusicIDs resolves an alias to music ids
// GET /chunithm/alias/music-id?alias=xxx
func (h *ChunithmHandler) GetMusicIDs(c echo.Context) error {
	alias := c.QueryParam("alias")
	if alias == "" {
		return respond(c, http.StatusBadRequest, "Missing alias parameter", nil)
	}

	ids, err := h.chunithm.GetMusicIDs(c.Request().Context(), alias)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.MusicIDsData{MusicIDs: ids})
}

// GetAliases returns all aliases of a song
// GET /chunithm/alias/:music_id
func (h *ChunithmHandler) GetAliases(c echo.Context) error {
	musicID, err := strconv.Atoi(c.Param("music_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid music id", nil)
	}

	aliases, err := h.chunithm.GetAliases(c.Request().Context(), musicID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", models.AliasListData{Aliases: aliases})
}

// AddAlias adds a song alias
// POST /chunithm/alias/:music_id/add
func (h *ChunithmHandler) AddAlias(c echo.Context) error {
	musicID, err := strconv.Atoi(c.Param("music_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid music id", nil)
	}

	var req models.ChunithmAliasRequest
	if err := c.Bind(&req); err != nil || req.Alias == "" {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	id, err := h.chunithm.AddAlias(c.Request().Context(), musicID, req.Alias)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusCreated, "Alias added", map[string]int64{"id": id})
}

// RemoveAlias deletes one alias row
// DELETE /chunithm/alias/:music_id/:internal_id
func (h *ChunithmHandler) RemoveAlias(c echo.Context) error {
	musicID, err := strconv.Atoi(c.Param("music_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid music id", nil)
	}
	internalID, err := strconv.ParseInt(c.Param("internal_id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid internal id", nil)
	}

	if err := h.chunithm.RemoveAlias(c.Request().Context(), musicID, internalID); err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Alias deleted", nil)
}

// GetDefaultServer returns the user's default server
// GET /chunithm/user/:im_id/default
func (h *ChunithmHandler) GetDefaultServer(c echo.Context) error {
	server, err := h.chunithm.GetDefaultServer(c.Request().Context(), c.Param("im_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", map[string]string{"server": server})
}

// GetBind returns the aime id bound on a server
// GET /chunithm/user/:im_id/:server
func (h *ChunithmHandler) GetBind(c echo.Context) error {
	aimeID, err := h.chunithm.GetBind(c.Request().Context(), c.Param("im_id"), c.Param("server"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", map[string]string{"aime_id": aimeID})
}

// SetBind binds an aime card on a server, replacing any previous card
// PUT /chunithm/user/:im_id/:server/:aime_id
func (h *ChunithmHandler) SetBind(c echo.Context) error {
	err := h.chunithm.SetBind(c.Request().Context(), c.Param("im_id"), c.Param("server"), c.Param("aime_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Binding updated", nil)
}

// DeleteBind removes an exact binding
// DELETE /chunithm/user/:im_id/:server/:aime_id
func (h *ChunithmHandler) DeleteBind(c echo.Context) error {
	err := h.chunithm.DeleteBind(c.Request().Context(), c.Param("im_id"), c.Param("server"), c.Param("aime_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "Binding deleted", nil)
}
