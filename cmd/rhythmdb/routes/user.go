package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/container"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/handlers"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/middleware"
)

// RegisterUserRoutes registers pjsk user bindings and preferences. The
// whole surface carries personal data, so every route sits behind the
// token gate.
func RegisterUserRoutes(e *echo.Echo, ctr *container.Container) {
	b := handlers.NewBindingHandler(ctr.BindingService, ctr.Components.Logger)
	p := handlers.NewPreferenceHandler(ctr.PreferenceService, ctr.Components.Logger)
	auth := middleware.RequireToken(ctr.Components.Config.Auth.APIToken)

	user := e.Group("/pjsk/user/:im_id", auth)
	{
		user.GET("/binding", b.List)                   // GET /pjsk/user/42/binding?server=jp
		user.POST("/binding", b.Add)
		user.GET("/binding/default", b.GetDefault)     // GET /pjsk/user/42/binding/default?server=jp
		user.PUT("/binding/default", b.SetDefault)
		user.DELETE("/binding/default", b.DeleteDefault)
		user.PATCH("/binding/:bind_id", b.SetVisibility)
		user.DELETE("/binding/:bind_id", b.Delete)

		user.GET("/preference", p.List)
		user.GET("/preference/:option", p.Get)
		user.PUT("/preference", p.Set)
		user.DELETE("/preference/:option", p.Delete)
	}
}
