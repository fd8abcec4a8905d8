package graphqlserver

import (
	"context"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"catalog.GO/graphql"
	gqlmodels "catalog.GO/graphql/models"
	"catalog.GO/graphql/resolvers"
	"catalog.GO/service/catalog"
)

// RootResolver is the root for graphql-go: its methods are the Query fields.
// Delegates to resolvers package.
type RootResolver struct {
	res *resolvers.QueryResolver
}

func NewRootResolver(source resolvers.ProductSource) *RootResolver {
	return &RootResolver{res: resolvers.NewQueryResolver(source)}
}

// ProductsArgs matches the products query arguments (defaults in schema: pageSize=20, currentPage=1).
type ProductsArgs struct {
	Search      *string
	Category    *string
	Subcategory *string
	PageSize    int32
	CurrentPage int32
}

func (r *RootResolver) Products(ctx context.Context, args ProductsArgs) (*gqlmodels.ProductSearchResult, error) {
	q := catalog.Query{
		Search:      deref(args.Search),
		Category:    deref(args.Category),
		Subcategory: deref(args.Subcategory),
	}
	ps, cp := int(args.PageSize), int(args.CurrentPage)
	return r.res.Products(ctx, q, &ps, &cp)
}

// ProductArgs matches the product query arguments.
type ProductArgs struct {
	ID gql.ID
}

func (r *RootResolver) Product(ctx context.Context, args ProductArgs) (*gqlmodels.Product, error) {
	return r.res.Product(ctx, string(args.ID))
}

func (r *RootResolver) Categories(ctx context.Context) ([]*gqlmodels.Category, error) {
	return r.res.Categories(ctx)
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *RootResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	return r.res.Extension(ctx, args.Name, args.Args)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(source resolvers.ProductSource) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), NewRootResolver(source), gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
