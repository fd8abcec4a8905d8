package resolvers

import (
	"context"
	"strconv"
	"strings"

	gqlmodels "catalog.GO/graphql/models"
	"catalog.GO/service/catalog"
)

func (r *QueryResolver) Products(ctx context.Context, q catalog.Query, pageSize, currentPage *int) (*gqlmodels.ProductSearchResult, error) {
	all, err := r.source.Products(ctx)
	if err != nil {
		return nil, err
	}
	matched := catalog.Filter(all, q)
	ps, cp := defaultPageSize(pageSize), defaultCurrentPage(currentPage)
	return &gqlmodels.ProductSearchResult{
		Items:      productsToModels(paginate(matched, cp, ps)),
		TotalCount: int32(len(matched)),
		PageInfo:   pageInfo(len(matched), cp, ps),
	}, nil
}

// Product returns nil for unknown or non-numeric ids.
func (r *QueryResolver) Product(ctx context.Context, id string) (*gqlmodels.Product, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return nil, nil
	}
	all, err := r.source.Products(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := catalog.FindByID(all, n)
	if !ok {
		return nil, nil
	}
	return productToModel(p), nil
}
