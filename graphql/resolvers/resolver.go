package resolvers

import (
	"context"
	"encoding/json"

	"catalog.GO/model/entity"

	gqlregistry "catalog.GO/graphql/registry"
)

// ProductSource yields the current catalog snapshot; *catalog.Store satisfies it.
type ProductSource interface {
	Products(ctx context.Context) ([]entity.Product, error)
}

// QueryResolver is the single resolver for all Query fields.
// Methods live in product.go and category.go.
// New Query fields: use RegisterSchemaExtension + add method on QueryResolver,
// or use _extension for fully dynamic resolvers.
type QueryResolver struct {
	source ProductSource
}

func NewQueryResolver(source ProductSource) *QueryResolver {
	return &QueryResolver{source: source}
}

// Extension dispatches to registered custom resolvers.
func (r *QueryResolver) Extension(ctx context.Context, name string, args *string) (*string, error) {
	var m map[string]interface{}
	if args != nil && *args != "" {
		_ = json.Unmarshal([]byte(*args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := gqlregistry.Resolve(ctx, name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
