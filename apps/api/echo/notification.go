package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/collegia/collegia/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := notificationApi{
		svc: deps.NotifSvc,
	}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.feed)
	ng.GET("/unread-count", api.unreadCount)
	ng.POST("/:id/read", api.markRead)
	ng.POST("/read-all", api.markAllRead)
}

// Handlers

func (api *notificationApi) feed(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	feed, err := api.svc.Feed(ctx.Request().Context(), claims.Email)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if feed == nil {
		feed = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, feed)
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	n, err := api.svc.UnreadCount(ctx.Request().Context(), claims.Email)
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"unread": n})
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id"), claims.Email); err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.MarkAllRead(ctx.Request().Context(), claims.Email); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}
