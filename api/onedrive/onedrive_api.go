package onedrive

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"catalog.GO/api"
	"catalog.GO/core/app"
	"catalog.GO/core/logger"
	"catalog.GO/core/metrics"
	"catalog.GO/service/onedrive"
)

func init() {
	api.RegisterModule(RegisterOneDriveRoutes)
}

type resolveRequest struct {
	URL string `json:"url"`
}

// RegisterOneDriveRoutes exposes the server-side 1drv.ms redirect chase.
func RegisterOneDriveRoutes(apiGroup *echo.Group, c *app.Container) {
	// POST /api/onedrive/resolve {"url": "https://1drv.ms/..."}
	apiGroup.POST("/onedrive/resolve", func(ctx echo.Context) error {
		var body resolveRequest
		if err := ctx.Bind(&body); err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
		raw := strings.TrimSpace(body.URL)
		if raw == "" {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "url is required"})
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "url is not a valid absolute URL"})
		}
		if !onedrive.IsShortHost(u.Hostname()) {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "url is not a OneDrive short link"})
		}

		resolved, err := c.Follower.Follow(ctx.Request().Context(), u.String())
		if err != nil {
			metrics.OneDriveResolutions.WithLabelValues("unresolved").Inc()
			c.Logger.Warn("OneDrive short link not resolved", logger.String("url", raw), logger.Error(err))
			return ctx.JSON(http.StatusBadGateway, echo.Map{"error": "could not resolve OneDrive link"})
		}
		metrics.OneDriveResolutions.WithLabelValues("resolved").Inc()
		return ctx.JSON(http.StatusOK, resolveRequest{URL: resolved})
	})
}
