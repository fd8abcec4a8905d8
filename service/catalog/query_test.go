package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog.GO/model/entity"
)

func queryFixture() []entity.Product {
	return []entity.Product{
		{ID: 1, Name: "Sofá Boreal", Description: "confortável e macio", Manufacturer: "Attraktiva", ManufacturerCode: "ATK-100", Category: "Sala", Subcategory: "Sofás"},
		{ID: 2, Name: "Mesa de Jantar", Description: "acompanha sofá", Manufacturer: "Madeira Viva", Category: "Sala", Subcategory: "Mesas"},
		{ID: 3, Name: "Cadeira Eames", Manufacturer: "Design Co", ProductReference: "REF-77", Category: "Cozinha", Subcategory: "Cadeiras"},
		{ID: 4, Name: "Poltrona", Category: "Sala", Subcategory: "Sofás"},
	}
}

func ids(products []entity.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	products := queryFixture()

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Filter(products, Query{})))
	assert.Equal(t, []int64{1}, ids(Filter(products, Query{Search: "sofa"})), "description is not searched")
	assert.Equal(t, []int64{1}, ids(Filter(products, Query{Search: "sofaa boreal"})))
	assert.Equal(t, []int64{3}, ids(Filter(products, Query{Search: "ref 77"})))
	assert.Equal(t, []int64{1}, ids(Filter(products, Query{Search: "atk"})))
	assert.Equal(t, []int64{1, 2, 4}, ids(Filter(products, Query{Category: "sala"})))
	assert.Equal(t, []int64{1, 4}, ids(Filter(products, Query{Category: "Sala", Subcategory: "SOFÁS"})))
	assert.Empty(t, Filter(products, Query{Search: "poltrona", Category: "Cozinha"}))
}

func TestFindByID(t *testing.T) {
	p, ok := FindByID(queryFixture(), 3)
	assert.True(t, ok)
	assert.Equal(t, "Cadeira Eames", p.Name)

	_, ok = FindByID(queryFixture(), 99)
	assert.False(t, ok)
}

func TestCategories(t *testing.T) {
	got := Categories(queryFixture())
	assert.Equal(t, []Category{
		{Name: "Sala", Count: 3, Subcategories: []string{"Sofás", "Mesas"}},
		{Name: "Cozinha", Count: 1, Subcategories: []string{"Cadeiras"}},
	}, got)

	empty := Categories(nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
