package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/container"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/handlers"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/middleware"
)

// RegisterAliasRoutes registers the pjsk alias surface: the read path, the
// moderated add/remove flow and per-group aliases. Static segments
// (pending, status, group) take precedence over the :key and :alias_type
// parameters, which keeps the whole surface on one prefix.
func RegisterAliasRoutes(e *echo.Echo, ctr *container.Container) {
	h := handlers.NewAliasHandler(ctr.AliasService, ctr.ModerationService, ctr.Components.Logger)
	m := handlers.NewModerationHandler(ctr.ModerationService, ctr.Components.Logger)
	auth := middleware.RequireToken(ctr.Components.Config.Auth.APIToken)

	alias := e.Group("/pjsk/alias")
	{
		// read path, open
		alias.GET("/:key", h.GetAliasTypeIDs)                      // GET /pjsk/alias/music-id?alias=
		alias.GET("/:alias_type/:alias_type_id", h.GetAliases)     // GET /pjsk/alias/music/123
		alias.GET("/group/:key", h.GetGroupAliasTypeIDs)           // GET /pjsk/alias/group/music-id?alias=&group_id=
		alias.GET("/group/:group_id/:alias_type/:alias_type_id", h.GetGroupAliases)

		// mutations and moderation, token-gated
		alias.POST("/:alias_type/:alias_type_id/add", h.AddAlias, auth)
		alias.DELETE("/:alias_type/:alias_type_id/:internal_id", h.RemoveAlias, auth)
		alias.POST("/group/:group_id/:alias_type/:alias_type_id", h.AddGroupAlias, auth)
		alias.DELETE("/group/:group_id/:alias_type/:alias_type_id", h.RemoveGroupAlias, auth)

		alias.GET("/pending", m.ListPending, auth)                 // GET /pjsk/alias/pending?im_id=
		alias.POST("/pending/:pending_id/approve", m.Approve, auth)
		alias.POST("/pending/:pending_id/reject", m.Reject, auth)
		alias.GET("/status/:pending_id", m.Status, auth)
	}
}
