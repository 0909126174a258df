package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/container"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/handlers"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/middleware"
)

// RegisterChunithmRoutes registers the chunithm surface: plain alias CRUD
// (no moderation step), aime-card bindings and music metadata
func RegisterChunithmRoutes(e *echo.Echo, ctr *container.Container) {
	h := handlers.NewChunithmHandler(ctr.ChunithmService, ctr.Components.Logger)
	mu := handlers.NewMusicHandler(ctr.MusicService, ctr.Components.Logger)
	auth := middleware.RequireToken(ctr.Components.Config.Auth.APIToken)

	alias := e.Group("/chunithm/alias")
	{
		alias.GET("/music-id", h.GetMusicIDs)          // GET /chunithm/alias/music-id?alias=
		alias.GET("/:music_id", h.GetAliases)
		alias.POST("/:music_id/add", h.AddAlias, auth)
		alias.DELETE("/:music_id/:internal_id", h.RemoveAlias, auth)
	}

	user := e.Group("/chunithm/user/:im_id", auth)
	{
		user.GET("/default", h.GetDefaultServer)       // GET /chunithm/user/42/default
		user.GET("/:server", h.GetBind)
		user.PUT("/:server/:aime_id", h.SetBind)
		user.DELETE("/:server/:aime_id", h.DeleteBind)
	}

	music := e.Group("/chunithm/music")
	{
		music.GET("/all-music-titles", mu.AllTitles)
		music.GET("/:music_id/basic-info", mu.BasicInfo)
		music.GET("/:music_id/difficulty-info", mu.DifficultyInfo)
		music.GET("/:music_id/chart-data", mu.ChartData)
		music.POST("/query-batch", mu.QueryBatch)
	}
}
