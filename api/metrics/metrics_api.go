package metrics

import (
	"github.com/labstack/echo/v4"

	"catalog.GO/api"
	"catalog.GO/core/app"
	"catalog.GO/core/metrics"
)

func init() {
	api.RegisterRoute(RegisterMetricsRoute)
}

// RegisterMetricsRoute exposes Prometheus metrics at /metrics.
func RegisterMetricsRoute(e *echo.Echo, _ *app.Container) {
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
