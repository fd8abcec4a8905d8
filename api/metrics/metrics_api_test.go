package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"catalog.GO/core/metrics"
)

func TestMetricsRoute(t *testing.T) {
	metrics.CatalogFetches.WithLabelValues("ok").Inc()

	e := echo.New()
	RegisterMetricsRoute(e, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_fetch_total{result="ok"}`)
}
