package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newServer() *echo.Echo {
	e := echo.New()
	g := e.Group("/api")
	g.Use(Middleware())
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	g.GET("/products", ok)
	g.POST("/push", ok)
	return e
}

func serve(e *echo.Echo, method, target string, mutate func(*http.Request)) int {
	req := httptest.NewRequest(method, target, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestBasicAuth(t *testing.T) {
	t.Setenv("AUTH_TYPE", "")
	t.Setenv("API_USER", "admin")
	t.Setenv("API_PASS", "secret")
	e := newServer()

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/api/push", nil))
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/api/push", func(r *http.Request) {
		r.SetBasicAuth("admin", "wrong")
	}))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/push", func(r *http.Request) {
		r.SetBasicAuth("admin", "secret")
	}))
}

func TestBasicAuth_NoUserConfigured(t *testing.T) {
	t.Setenv("AUTH_TYPE", "")
	t.Setenv("API_USER", "")
	t.Setenv("API_PASS", "")
	e := newServer()

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/api/push", func(r *http.Request) {
		r.SetBasicAuth("", "")
	}))
}

func TestKeyAuth(t *testing.T) {
	t.Setenv("AUTH_TYPE", "key")
	t.Setenv("API_KEY", "k-123")
	e := newServer()

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/api/push", func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer nope")
	}))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/push", func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer k-123")
	}))
}
