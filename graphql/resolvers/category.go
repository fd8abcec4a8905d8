package resolvers

import (
	"context"

	gqlmodels "catalog.GO/graphql/models"
	"catalog.GO/service/catalog"
)

func (r *QueryResolver) Categories(ctx context.Context) ([]*gqlmodels.Category, error) {
	all, err := r.source.Products(ctx)
	if err != nil {
		return nil, err
	}
	cats := catalog.Categories(all)
	out := make([]*gqlmodels.Category, 0, len(cats))
	for _, c := range cats {
		subs := c.Subcategories
		if subs == nil {
			subs = []string{}
		}
		out = append(out, &gqlmodels.Category{Name: c.Name, Count: int32(c.Count), Subcategories: subs})
	}
	return out, nil
}
