package push

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"catalog.GO/api"
	"catalog.GO/core/app"
	"catalog.GO/core/logger"
	entity "catalog.GO/model/entity"
	pushService "catalog.GO/service/push"
)

// MaxPayloadBytes bounds a notification body. Push services reject
// larger encrypted payloads.
const MaxPayloadBytes = 4 << 10

func init() {
	api.RegisterModule(RegisterPushRoutes)
}

type subscribeRequest struct {
	Endpoint string                      `json:"endpoint"`
	Keys     entity.PushSubscriptionKeys `json:"keys"`
}

// RegisterPushRoutes stores browser push subscriptions and broadcasts
// notifications to them. /api/push requires credentials.
func RegisterPushRoutes(apiGroup *echo.Group, c *app.Container) {
	// POST /api/subscribe
	apiGroup.POST("/subscribe", func(ctx echo.Context) error {
		var body subscribeRequest
		if err := ctx.Bind(&body); err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subscription"})
		}
		svc, err := c.Push()
		if err != nil {
			c.Logger.Error("Push service unavailable", logger.Error(err))
			return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"error": "push notifications unavailable"})
		}
		if _, err := svc.Subscribe(body.Endpoint, body.Keys); err != nil {
			if errors.Is(err, pushService.ErrEndpointRequired) {
				return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			c.Logger.Error("Failed to store push subscription", logger.Error(err))
			return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store subscription"})
		}
		return ctx.JSON(http.StatusCreated, echo.Map{})
	})

	// POST /api/push, body is forwarded verbatim as the notification payload
	apiGroup.POST("/push", func(ctx echo.Context) error {
		payload, err := io.ReadAll(io.LimitReader(ctx.Request().Body, MaxPayloadBytes+1))
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
		}
		if len(payload) > MaxPayloadBytes {
			return ctx.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "payload too large"})
		}
		if !json.Valid(payload) {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "payload must be JSON"})
		}
		svc, err := c.Push()
		if err != nil {
			c.Logger.Error("Push service unavailable", logger.Error(err))
			return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"error": "push notifications unavailable"})
		}
		res, err := svc.Broadcast(ctx.Request().Context(), payload)
		if err != nil {
			c.Logger.Error("Push broadcast failed", logger.Error(err))
			return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "broadcast failed"})
		}
		return ctx.JSON(http.StatusOK, res)
	})
}
