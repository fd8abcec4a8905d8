package models

import gql "github.com/graph-gophers/graphql-go"

type Product struct {
	ID               gql.ID
	Name             string
	Description      string
	Price            *float64
	Image            string
	Images           []string
	Category         string
	Subcategory      string
	Manufacturer     string
	ManufacturerCode string
	ProductReference string
}

type Category struct {
	Name          string
	Count         int32
	Subcategories []string
}

type ProductSearchResult struct {
	Items      []*Product
	TotalCount int32
	PageInfo   *PageInfo
}

type PageInfo struct {
	PageSize    int32
	CurrentPage int32
	TotalPages  int32
}
