package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core/schedule"
)

type scheduleApi struct {
	deps *Deps
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := scheduleApi{deps: deps}

	sg := g.Group("/schedules", jwt)
	sg.POST("", api.create, staffMiddleware())
	sg.GET("/children/:id", api.byChild)
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}

	id, err := api.deps.ScheduleSvc.AddEntry(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding schedule entry")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (api *scheduleApi) byChild(ctx echo.Context) error {
	entries, err := api.deps.ScheduleSvc.ByChild(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying schedule")
	}
	if entries == nil {
		entries = []schedule.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
