package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/child"
)

type childApi struct {
	deps *Deps
}

func registerChildAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := childApi{deps: deps}

	cg := g.Group("/children", jwt, staffMiddleware())
	cg.PUT("/:id", api.save)
	cg.GET("/:id", api.retrieve)
}

func (api *childApi) save(ctx echo.Context) error {
	var data child.Child
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Child")
	}
	data.ID = ctx.Param("id")

	if err := api.deps.ChildSvc.SaveProfile(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving child profile")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *childApi) retrieve(ctx echo.Context) error {
	c, err := api.deps.ChildSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if core.IsDocNotFound(err) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding child by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}
