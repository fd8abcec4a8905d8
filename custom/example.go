// Package custom is where project-specific extensions register themselves.
// Everything here hooks into the registries from init().
package custom

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"catalog.GO/api"
	"catalog.GO/cmd"
	"catalog.GO/core/app"
	gqlregistry "catalog.GO/graphql/registry"
	"catalog.GO/service/catalog"
)

func init() {
	// GraphQL extension
	gqlregistry.Register("ping", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{"pong": "ok"}, nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "catalog:categories",
		Short: "List categories with product counts and subcategories",
		RunE: func(c *cobra.Command, args []string) error {
			ct := cmd.MustContainer(c)
			defer ct.Logger.Sync()
			products, err := ct.Store.Products(c.Context())
			if err != nil {
				return err
			}
			for _, cat := range catalog.Categories(products) {
				fmt.Fprintf(c.OutOrStdout(), "%-30s %4d  %v\n", cat.Name, cat.Count, cat.Subcategories)
			}
			return nil
		},
	})

	// HTTP route
	api.RegisterRoute(RegisterHealthRoute)
}

// RegisterHealthRoute serves /health: 200 with the product count when the
// catalog loads, 503 otherwise.
func RegisterHealthRoute(e *echo.Echo, c *app.Container) {
	e.GET("/health", func(ctx echo.Context) error {
		products, err := c.Store.Products(ctx.Request().Context())
		if err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		}
		return ctx.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "products": len(products)})
	})
}
