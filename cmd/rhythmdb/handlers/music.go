package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/service"
	"github.com/harukilab/rhythmdb/common/logger"
)

// MusicHandler serves chunithm music metadata
type MusicHandler struct {
	music *service.MusicService
	log   *logger.Logger
}

// NewMusicHandler creates a new music handler
func NewMusicHandler(music *service.MusicService, log *logger.Logger) *MusicHandler {
	return &MusicHandler{
		music: music,
		log:   log,
	}
}

// AllTitles returns the id and title of every song in the catalog
// GET /chunithm/music/all-music-titles
func (h *MusicHandler) AllTitles(c echo.Context) error {
	titles, err := h.music.AllTitles(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", titles)
}

// BasicInfo returns a song's basic metadata
// GET /chunithm/music/:music_id/basic-info
func (h *MusicHandler) BasicInfo(c echo.Context) error {
	musicID, err := strconv.Atoi(c.Param("music_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid music id", nil)
	}

	info, err := h.music.BasicInfo(c.Request().Context(), musicID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", info)
}

// DifficultyInfo returns the chart constants for one game version,
// falling back to the most recent version when the exact one is absent
// GET /chunithm/music/:music_id/difficulty-info?version=xxx
func (h *MusicHandler) DifficultyInfo(c echo.Context) error {
	musicID, err := strconv.Atoi(c.Param("music_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid music id", nil)
	}

	diff, err := h.music.DifficultyInfo(c.Request().Context(), musicID, c.QueryParam("version"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", diff)
}

// ChartData returns the note-count breakdown of a song's charts
// GET /chunithm/music/:music_id/chart-data
func (h *MusicHandler) ChartData(c echo.Context) error {
	musicID, err := strconv.Atoi(c.Param("music_id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid music id", nil)
	}

	charts, err := h.music.ChartData(c.Request().Context(), musicID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", charts)
}

// QueryBatch resolves info and difficulty for many songs at once
// POST /chunithm/music/query-batch
func (h *MusicHandler) QueryBatch(c echo.Context) error {
	var req models.MusicBatchRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	result, err := h.music.QueryBatch(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return respond(c, http.StatusOK, "success", result)
}
