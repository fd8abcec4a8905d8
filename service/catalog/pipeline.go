// Package catalog ingests the delimited product feed into entity.Product
// values and serves cached, filterable views of the result.
package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"catalog.GO/core/logger"
	"catalog.GO/core/metrics"
	"catalog.GO/model/entity"
	"catalog.GO/service/imageurl"
)

const (
	DefaultMaxImages   = 10
	DefaultConcurrency = 8

	// FallbackDescription replaces a blank description.
	FallbackDescription = "Descrição não disponível"
	// FallbackCategory replaces a blank category or subcategory.
	FallbackCategory = "Outros"
)

// FallbackName is the synthesized name for a row with a blank name.
func FallbackName(id int64) string {
	return "Produto " + strconv.FormatInt(id, 10)
}

var idAliases = []string{"id", "ID", "Id", "d"}

// ImageNormalizer rewrites one raw image cell. *imageurl.Chain and
// *imageurl.Memo satisfy it.
type ImageNormalizer interface {
	Normalize(ctx context.Context, raw string) string
}

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	Source Source
	// Delimiter is ';' unless set. It is never sniffed from the payload.
	Delimiter rune
	MaxImages int
	// Images is the rewrite chain; imageurl.DefaultChain when nil.
	Images *imageurl.Chain
	Client *http.Client
	// Origin resolves relative source URLs over HTTP. Without it they are
	// read from LocalDir.
	Origin   string
	LocalDir string
	// Concurrency bounds rows normalized at once.
	Concurrency int
	Logger      logger.Logger
}

// Pipeline fetches, parses and normalizes the catalog. It keeps no state
// between calls.
type Pipeline struct {
	source      Source
	delimiter   rune
	maxImages   int
	images      *imageurl.Chain
	client      *http.Client
	origin      *url.URL
	localDir    string
	concurrency int
	log         logger.Logger
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		source:      opts.Source,
		delimiter:   opts.Delimiter,
		maxImages:   opts.MaxImages,
		images:      opts.Images,
		client:      opts.Client,
		localDir:    opts.LocalDir,
		concurrency: opts.Concurrency,
		log:         opts.Logger,
	}
	if p.delimiter == 0 {
		p.delimiter = ';'
	}
	if p.maxImages <= 0 {
		p.maxImages = DefaultMaxImages
	}
	if p.images == nil {
		p.images = imageurl.DefaultChain()
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 30 * time.Second}
	}
	if p.localDir == "" {
		p.localDir = "."
	}
	if p.concurrency <= 0 {
		p.concurrency = DefaultConcurrency
	}
	if p.log == nil {
		p.log = logger.NewNop()
	}
	if origin := strings.TrimSpace(opts.Origin); origin != "" {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			p.origin = u
		}
	}
	return p
}

// ResolveProductsURL exposes the configured source resolution.
func (p *Pipeline) ResolveProductsURL(baseURL string) string {
	return p.source.ResolveProductsURL(baseURL)
}

// FetchCatalog loads sourceURL (or the configured source when blank) and
// returns the accepted products in input order. Transport failures return
// *FetchError and malformed payloads *ParseError; bad rows are dropped.
func (p *Pipeline) FetchCatalog(ctx context.Context, sourceURL string) ([]entity.Product, error) {
	location := strings.TrimSpace(sourceURL)
	if location == "" {
		location = p.source.ResolveProductsURL("")
	} else if isAbsoluteURL(location) {
		location = SheetsCSVURL(location)
	}

	start := time.Now()
	payload, err := p.load(ctx, location)
	if err != nil {
		metrics.CatalogFetches.WithLabelValues("fetch_error").Inc()
		p.log.Error("Failed to fetch catalog", logger.String("source", location), logger.Error(err))
		return nil, err
	}

	products, err := p.Parse(ctx, payload)
	if err != nil {
		metrics.CatalogFetches.WithLabelValues("parse_error").Inc()
		p.log.Error("Failed to parse catalog", logger.String("source", location), logger.Error(err))
		return nil, err
	}
	metrics.CatalogFetches.WithLabelValues("ok").Inc()
	p.log.Info("Catalog fetched",
		logger.String("source", location),
		logger.Int("products", len(products)),
		logger.Duration("took", time.Since(start)))
	return products, nil
}

// Parse turns a payload into products. Rows are normalized concurrently;
// identical image cells are rewritten once per call.
func (p *Pipeline) Parse(ctx context.Context, payload []byte) ([]entity.Product, error) {
	t, err := parseRows(payload, p.delimiter)
	if err != nil {
		return nil, err
	}
	imageCols := imageColumns(t.headers)
	memo := p.images.Memo()

	results := make([]*entity.Product, len(t.rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, row := range t.rows {
		g.Go(func() error {
			if product, ok := p.normalizeRow(gctx, row, imageCols, memo); ok {
				results[i] = product
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products := make([]entity.Product, 0, len(results))
	for _, product := range results {
		if product != nil {
			products = append(products, *product)
		}
	}
	dropped := len(t.rows) - len(products)
	metrics.CatalogRows.WithLabelValues("accepted").Add(float64(len(products)))
	metrics.CatalogRows.WithLabelValues("dropped").Add(float64(dropped))
	if dropped > 0 {
		p.log.Debug("Catalog rows dropped", logger.Int("dropped", dropped), logger.Int("rows", len(t.rows)))
	}
	return products, nil
}

// normalizeRow builds a Product from row, reporting false when the row has
// no usable id or no image.
func (p *Pipeline) normalizeRow(ctx context.Context, row RawRow, imageCols []string, images ImageNormalizer) (*entity.Product, bool) {
	rawID, _ := row.lookup(idAliases...)
	id, ok := parseID(rawID)
	if !ok {
		return nil, false
	}

	product := &entity.Product{
		ID:               id,
		Name:             row.text("name"),
		Description:      row.text("description"),
		Category:         row.text("category"),
		Subcategory:      row.text("subcategory"),
		Manufacturer:     row.text("manufacturer"),
		ManufacturerCode: row.text("manufacturerCode"),
		ProductReference: row.text("productReference"),
		Images:           p.resolveImages(ctx, row, imageCols, images),
	}
	if raw, ok := row.lookup("price"); ok {
		if price, ok := ToNumber(raw); ok {
			product.Price = &price
		}
	}
	if !validateRow(product) {
		return nil, false
	}
	product.Image = product.Images[0]
	applyFallbacks(product)
	return product, true
}

func (p *Pipeline) resolveImages(ctx context.Context, row RawRow, imageCols []string, images ImageNormalizer) []string {
	var out []string
	for _, col := range imageCols {
		if len(out) == p.maxImages {
			break
		}
		raw := strings.TrimSpace(row.cell(col))
		if raw == "" {
			continue
		}
		if resolved := images.Normalize(ctx, raw); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

// validateRow holds the acceptance rule: an id (already parsed) and at least
// one image. Everything else degrades to a fallback.
func validateRow(product *entity.Product) bool {
	return len(product.Images) > 0
}

func applyFallbacks(product *entity.Product) {
	if product.Name == "" {
		product.Name = FallbackName(product.ID)
	}
	if product.Description == "" {
		product.Description = FallbackDescription
	}
	if product.Category == "" {
		product.Category = FallbackCategory
	}
	if product.Subcategory == "" {
		product.Subcategory = FallbackCategory
	}
}

// IsFetchError reports whether err came from retrieving the source.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsParseError reports whether err came from a malformed payload.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
