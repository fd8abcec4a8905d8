package catalog

import (
	"strings"

	"catalog.GO/model/entity"
	"catalog.GO/service/search"
)

// Query narrows a product list. Blank fields do not filter.
type Query struct {
	Search      string
	Category    string
	Subcategory string
}

// SearchableText is the text a product is searched by. Description is left
// out so incidental wording does not match.
func SearchableText(p entity.Product) string {
	return search.CreateSearchableText(p.Name, p.Manufacturer, p.ManufacturerCode, p.ProductReference)
}

// Filter returns the products matching q in their original order. Category
// and subcategory compare case-insensitively.
func Filter(products []entity.Product, q Query) []entity.Product {
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && !strings.EqualFold(strings.TrimSpace(q.Category), p.Category) {
			continue
		}
		if q.Subcategory != "" && !strings.EqualFold(strings.TrimSpace(q.Subcategory), p.Subcategory) {
			continue
		}
		if !search.SmartSearchMatch(q.Search, SearchableText(p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FindByID returns the first product with id.
func FindByID(products []entity.Product, id int64) (entity.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Product{}, false
}

// Category is one entry of the category menu.
type Category struct {
	Name          string   `json:"name"`
	Count         int      `json:"count"`
	Subcategories []string `json:"subcategories"`
}

// Categories groups products by category in first-seen order, with each
// category's subcategories also in first-seen order.
func Categories(products []entity.Product) []Category {
	out := []Category{}
	index := map[string]int{}
	seenSub := map[string]map[string]bool{}
	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, Category{Name: p.Category, Subcategories: []string{}})
			seenSub[p.Category] = map[string]bool{}
		}
		out[i].Count++
		if !seenSub[p.Category][p.Subcategory] {
			seenSub[p.Category][p.Subcategory] = true
			out[i].Subcategories = append(out[i].Subcategories, p.Subcategory)
		}
	}
	return out
}
