package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core/notification"
)

type feedApi struct {
	deps *Deps
}

func registerFeedAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := feedApi{deps: deps}

	fg := g.Group("/feed", jwt)
	fg.GET("", api.stream)
	fg.GET("/current", api.current)
}

// stream pushes the caller's full notice list, newest first, as a
// server-sent-events stream. The first event carries the current list; every
// subsequent event carries the full refreshed list.
func (api *feedApi) stream(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	reqCtx := ctx.Request().Context()

	// stale lists are superseded, not queued
	updates := make(chan []notification.Notice, 1)
	unsubscribe, err := api.deps.NotifSvc.Subscribe(reqCtx, claims.Subject, func(notices []notification.Notice) {
		for {
			select {
			case updates <- notices:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	if err != nil {
		return errors.Wrap(err, "subscribing to feed")
	}
	defer unsubscribe()

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case notices := <-updates:
			data, err := json.Marshal(notices)
			if err != nil {
				return errors.Wrap(err, "encoding notices")
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
				return nil // client went away
			}
			res.Flush()
		}
	}
}

// current returns the caller's notice list once, newest first.
func (api *feedApi) current(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	notices, err := api.deps.NotifSvc.Feed(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying feed")
	}
	if notices == nil {
		notices = []notification.Notice{}
	}
	return ctx.JSON(http.StatusOK, notices)
}
