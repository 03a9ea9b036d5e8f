package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/billing"
)

type billingApi struct {
	deps *Deps
}

func registerBillingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := billingApi{deps: deps}

	// staff manage invoices; parents read their own
	bg := g.Group("/invoices", jwt)
	bg.POST("", api.create, staffMiddleware())
	bg.PATCH("/:id/status", api.updateStatus, staffMiddleware())
	bg.GET("/:id", api.retrieve)
	bg.GET("", api.mine)
}

func (api *billingApi) create(ctx echo.Context) error {
	var data billing.NewInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvoice")
	}

	id, err := api.deps.BillingSvc.CreateInvoice(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating invoice")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (api *billingApi) updateStatus(ctx echo.Context) error {
	var data StatusUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdateRequest")
	}

	if err := api.deps.BillingSvc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data.Status); err != nil {
		return errors.Wrap(err, "updating invoice status")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *billingApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	inv, err := api.deps.BillingSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if core.IsDocNotFound(err) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding invoice by ID")
	}
	// a parent only ever sees their own invoices
	if !claims.role().IsStaff() && inv.ParentID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, inv)
}

// mine returns the calling parent's invoices.
func (api *billingApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	invoices, err := api.deps.BillingSvc.ByParent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	return ctx.JSON(http.StatusOK, invoices)
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}
