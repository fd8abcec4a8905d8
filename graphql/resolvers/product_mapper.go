package resolvers

import (
	"strconv"

	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "catalog.GO/graphql/models"
	"catalog.GO/model/entity"
)

func productToModel(p entity.Product) *gqlmodels.Product {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return &gqlmodels.Product{
		ID:               gql.ID(strconv.FormatInt(p.ID, 10)),
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		Image:            p.Image,
		Images:           images,
		Category:         p.Category,
		Subcategory:      p.Subcategory,
		Manufacturer:     p.Manufacturer,
		ManufacturerCode: p.ManufacturerCode,
		ProductReference: p.ProductReference,
	}
}

func productsToModels(products []entity.Product) []*gqlmodels.Product {
	out := make([]*gqlmodels.Product, 0, len(products))
	for _, p := range products {
		out = append(out, productToModel(p))
	}
	return out
}
