package catalog

import (
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"

	"catalog.GO/api"
	"catalog.GO/core/app"
	"catalog.GO/core/logger"
	catalogService "catalog.GO/service/catalog"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
	api.RegisterRoute(RegisterCatalogFileRoute)
}

// RegisterCatalogRoutes serves the product feed and category menu. Refresh
// is the only route that needs credentials.
func RegisterCatalogRoutes(apiGroup *echo.Group, c *app.Container) {
	// GET /api/products?q=&category=&subcategory=
	apiGroup.GET("/products", func(ctx echo.Context) error {
		products, err := c.Store.Products(ctx.Request().Context())
		if err != nil {
			return catalogUnavailable(ctx, c, err)
		}
		return ctx.JSON(http.StatusOK, catalogService.Filter(products, catalogService.Query{
			Search:      ctx.QueryParam("q"),
			Category:    ctx.QueryParam("category"),
			Subcategory: ctx.QueryParam("subcategory"),
		}))
	})

	// GET /api/products/:id
	apiGroup.GET("/products/:id", func(ctx echo.Context) error {
		id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		products, err := c.Store.Products(ctx.Request().Context())
		if err != nil {
			return catalogUnavailable(ctx, c, err)
		}
		product, ok := catalogService.FindByID(products, id)
		if !ok {
			return ctx.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return ctx.JSON(http.StatusOK, product)
	})

	// GET /api/categories
	apiGroup.GET("/categories", func(ctx echo.Context) error {
		products, err := c.Store.Products(ctx.Request().Context())
		if err != nil {
			return catalogUnavailable(ctx, c, err)
		}
		return ctx.JSON(http.StatusOK, catalogService.Categories(products))
	})

	// POST /api/catalog/refresh
	apiGroup.POST("/catalog/refresh", func(ctx echo.Context) error {
		products, err := c.Store.Refresh(ctx.Request().Context())
		if err != nil {
			return catalogUnavailable(ctx, c, err)
		}
		return ctx.JSON(http.StatusOK, echo.Map{"products": len(products)})
	})
}

// RegisterCatalogFileRoute serves the bundled CSV at /products.csv so a
// relative catalog source works against this server.
func RegisterCatalogFileRoute(e *echo.Echo, c *app.Container) {
	e.GET("/products.csv", func(ctx echo.Context) error {
		path := c.Config.CatalogLocalFile
		if _, err := os.Stat(path); err != nil {
			return ctx.JSON(http.StatusNotFound, echo.Map{"error": "catalog file not found"})
		}
		ctx.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		return ctx.File(path)
	})
}

// catalogUnavailable hides fetch and parse details from storefront clients.
func catalogUnavailable(ctx echo.Context, c *app.Container, err error) error {
	c.Logger.Error("Catalog unavailable", logger.String("path", ctx.Path()), logger.Error(err))
	return ctx.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load catalog"})
}
