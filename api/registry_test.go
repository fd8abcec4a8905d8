package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"catalog.GO/core/app"
	"catalog.GO/core/registry"
)

func TestRegistry_Register_Apply(t *testing.T) {
	RegisterGET("/test/registry/check", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	RegisterModule(func(g *echo.Group, _ *app.Container) {
		g.GET("/test/module", func(c echo.Context) error {
			return c.NoContent(http.StatusNoContent)
		})
	})

	e := echo.New()
	ApplyRoutes(e, nil)
	ApplyModules(e.Group("/api"), nil)
	defer registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryRoutes)
	defer registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryAPI)

	req := httptest.NewRequest(http.MethodGet, "/test/registry/check", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/test/module", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestRegistry_LockedPanics(t *testing.T) {
	registry.GlobalRegistry.Lock(registry.KeyRegistryRoutes)
	defer registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryRoutes)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic after lock")
		}
	}()
	RegisterGET("/too/late", func(c echo.Context) error { return nil })
}
