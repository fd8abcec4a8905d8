package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"catalog.GO/core/app"
	"catalog.GO/model/entity"
	"catalog.GO/service/catalog"
)

var (
	fetchURL  string
	fetchFile string
	fetchJSON bool

	searchCategory    string
	searchSubcategory string
)

var catalogFetchCmd = &cobra.Command{
	Use:   "catalog:fetch",
	Short: "Fetch and normalize the catalog CSV, then print a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := MustContainer(cmd)
		defer c.Logger.Sync()
		return runFetch(cmd.Context(), c, cmd.OutOrStdout())
	},
}

func runFetch(ctx context.Context, c *app.Container, out io.Writer) error {
	start := time.Now()
	var (
		products []entity.Product
		err      error
	)
	source := fetchURL
	if fetchFile != "" {
		source = fetchFile
		var payload []byte
		payload, err = os.ReadFile(fetchFile)
		if err == nil {
			products, err = c.Pipeline.Parse(ctx, payload)
		}
	} else {
		if source == "" {
			source = c.Pipeline.ResolveProductsURL("")
		}
		products, err = c.Pipeline.FetchCatalog(ctx, source)
	}
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	if fetchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}
	writeReport(out, source, products, time.Since(start))
	return nil
}

func writeReport(out io.Writer, source string, products []entity.Product, elapsed time.Duration) {
	priced, images := 0, 0
	for _, p := range products {
		if p.Price != nil {
			priced++
		}
		images += len(p.Images)
	}
	fmt.Fprintf(out, `
=== Catalog Report ===
Source:         %s
Products:       %d
With price:     %d
Images:         %d
Categories:     %d
Total time:     %s
======================
`, source, len(products), priced, images, len(catalog.Categories(products)), elapsed.Round(time.Millisecond))
}

var catalogSearchCmd = &cobra.Command{
	Use:   "catalog:search [term]",
	Short: "Search the catalog with the storefront's fuzzy matcher",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := MustContainer(cmd)
		defer c.Logger.Sync()
		products, err := c.Store.Products(cmd.Context())
		if err != nil {
			return err
		}
		q := catalog.Query{Category: searchCategory, Subcategory: searchSubcategory}
		if len(args) == 1 {
			q.Search = args[0]
		}
		printProducts(cmd.OutOrStdout(), catalog.Filter(products, q))
		return nil
	},
}

func printProducts(out io.Writer, products []entity.Product) {
	for _, p := range products {
		price := "-"
		if p.Price != nil {
			price = fmt.Sprintf("%.2f", *p.Price)
		}
		fmt.Fprintf(out, "%6d  %-40s  %-20s  %10s\n", p.ID, p.Name, p.Category+"/"+p.Subcategory, price)
	}
	fmt.Fprintf(out, "%d product(s)\n", len(products))
}

var catalogIndexCmd = &cobra.Command{
	Use:   "catalog:index",
	Short: "Mirror the catalog into Elasticsearch",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := MustContainer(cmd)
		defer c.Logger.Sync()
		ix, err := c.Indexer()
		if err != nil {
			return err
		}
		products, err := c.Store.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		n, err := ix.IndexProducts(cmd.Context(), products)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d product(s) into %s\n", n, c.Config.ElasticsearchIndex)
		return nil
	},
}

func init() {
	catalogFetchCmd.Flags().StringVarP(&fetchURL, "url", "u", "", "Catalog URL or path (default: configured source)")
	catalogFetchCmd.Flags().StringVarP(&fetchFile, "file", "f", "", "Parse a local CSV file instead of fetching")
	catalogFetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the normalized products as JSON")
	catalogSearchCmd.Flags().StringVar(&searchCategory, "category", "", "Only this category")
	catalogSearchCmd.Flags().StringVar(&searchSubcategory, "subcategory", "", "Only this subcategory")
	rootCmd.AddCommand(catalogFetchCmd, catalogSearchCmd, catalogIndexCmd)
}
