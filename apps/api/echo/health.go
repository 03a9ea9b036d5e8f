package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core/health"
)

type healthApi struct {
	deps *Deps
}

func registerHealthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := healthApi{deps: deps}

	hg := g.Group("/health", jwt, staffMiddleware())
	hg.POST("/incidents", api.log)
	hg.GET("/incidents/children/:id", api.byChild)
}

func (api *healthApi) log(ctx echo.Context) error {
	var data health.NewIncident
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIncident")
	}

	id, err := api.deps.HealthSvc.Log(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging incident")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (api *healthApi) byChild(ctx echo.Context) error {
	incs, err := api.deps.HealthSvc.ByChild(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying incidents")
	}
	if incs == nil {
		incs = []health.Incident{}
	}
	return ctx.JSON(http.StatusOK, incs)
}
