package images

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"catalog.GO/api"
	"catalog.GO/core/app"
	"catalog.GO/core/logger"
	"catalog.GO/service/thumbnail"
)

func init() {
	api.RegisterModule(RegisterImageRoutes)
}

func RegisterImageRoutes(apiGroup *echo.Group, c *app.Container) {
	// GET /api/images/thumbnail?url=&w=
	apiGroup.GET("/images/thumbnail", func(ctx echo.Context) error {
		raw := ctx.QueryParam("url")
		if raw == "" {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "url is required"})
		}
		width := thumbnail.DefaultWidth
		if w := ctx.QueryParam("w"); w != "" {
			n, err := strconv.Atoi(w)
			if err != nil {
				return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "w must be an integer"})
			}
			width = n
		}

		out, err := c.Thumbnails.Thumbnail(ctx.Request().Context(), raw, width)
		var upstream *thumbnail.UpstreamError
		switch {
		case err == nil:
		case errors.Is(err, thumbnail.ErrInvalidURL), errors.Is(err, thumbnail.ErrInvalidWidth):
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.As(err, &upstream):
			c.Logger.Warn("Thumbnail source unavailable", logger.String("url", upstream.URL), logger.Error(upstream.Err))
			return ctx.JSON(http.StatusBadGateway, echo.Map{"error": "image unavailable"})
		default:
			c.Logger.Error("Thumbnail failed", logger.Error(err))
			return ctx.JSON(http.StatusInternalServerError, echo.Map{"error": "thumbnail failed"})
		}

		ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
		return ctx.Blob(http.StatusOK, "image/webp", out)
	})
}
