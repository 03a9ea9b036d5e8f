package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core/attendance"
)

type attendanceApi struct {
	deps *Deps
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := attendanceApi{deps: deps}

	ag := g.Group("/attendance", jwt, staffMiddleware())
	ag.POST("", api.create)
	ag.POST("/qr", api.createFromQR)
	ag.GET("/children/:id", api.byChild)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}

	id, err := api.deps.AttendanceSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// createFromQR accepts the raw text scanned off a check-in QR code.
func (api *attendanceApi) createFromQR(ctx echo.Context) error {
	var data QRScanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QRScanRequest")
	}

	rec, err := attendance.ParseQRPayload(data.Payload)
	if err != nil {
		return err
	}
	id, err := api.deps.AttendanceSvc.Create(ctx.Request().Context(), rec)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (api *attendanceApi) byChild(ctx echo.Context) error {
	recs, err := api.deps.AttendanceSvc.ByChild(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

type (
	CreatedResponse struct {
		ID string `json:"id"`
	}

	QRScanRequest struct {
		Payload string `json:"payload"`
	}
)
