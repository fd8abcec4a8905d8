package graphqlserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gqlregistry "catalog.GO/graphql/registry"
	"catalog.GO/model/entity"
)

type stubSource struct {
	products []entity.Product
	err      error
}

func (s stubSource) Products(context.Context) ([]entity.Product, error) {
	return s.products, s.err
}

func price(v float64) *float64 { return &v }

func fixture() []entity.Product {
	return []entity.Product{
		{ID: 1, Name: "Sofá Boreal", Price: price(1999.9), Image: "a.jpg", Images: []string{"a.jpg", "b.jpg"}, Category: "Sala", Subcategory: "Sofás"},
		{ID: 2, Name: "Mesa Lateral", Image: "c.jpg", Images: []string{"c.jpg"}, Category: "Sala", Subcategory: "Mesas"},
		{ID: 3, Name: "Cadeira Eames", Image: "d.jpg", Images: []string{"d.jpg"}, Category: "Cozinha", Subcategory: "Cadeiras"},
	}
}

func exec(t *testing.T, src stubSource, query string) (map[string]interface{}, []string) {
	t.Helper()
	schema, err := NewSchema(src)
	require.NoError(t, err)
	resp := schema.Exec(context.Background(), query, "", nil)
	var errs []string
	for _, e := range resp.Errors {
		errs = append(errs, e.Message)
	}
	var data map[string]interface{}
	if len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, &data))
	}
	return data, errs
}

func TestProducts_Paginated(t *testing.T) {
	data, errs := exec(t, stubSource{products: fixture()}, `{
		products(category: "sala", pageSize: 1, currentPage: 2) {
			total_count
			page_info { page_size current_page total_pages }
			items { id name price images }
		}
	}`)
	require.Empty(t, errs)

	res := data["products"].(map[string]interface{})
	assert.EqualValues(t, 2, res["total_count"])
	info := res["page_info"].(map[string]interface{})
	assert.EqualValues(t, 1, info["page_size"])
	assert.EqualValues(t, 2, info["current_page"])
	assert.EqualValues(t, 2, info["total_pages"])

	items := res["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "2", item["id"])
	assert.Nil(t, item["price"])
}

func TestProducts_Search(t *testing.T) {
	data, errs := exec(t, stubSource{products: fixture()}, `{ products(search: "sofa") { total_count items { name price } } }`)
	require.Empty(t, errs)
	res := data["products"].(map[string]interface{})
	assert.EqualValues(t, 1, res["total_count"])
	item := res["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Sofá Boreal", item["name"])
	assert.InDelta(t, 1999.9, item["price"], 0.001)
}

func TestProduct(t *testing.T) {
	data, errs := exec(t, stubSource{products: fixture()}, `{ product(id: "3") { name category subcategory } }`)
	require.Empty(t, errs)
	p := data["product"].(map[string]interface{})
	assert.Equal(t, "Cadeira Eames", p["name"])
	assert.Equal(t, "Cadeiras", p["subcategory"])

	data, errs = exec(t, stubSource{products: fixture()}, `{ product(id: "99") { name } }`)
	require.Empty(t, errs)
	assert.Nil(t, data["product"])

	data, errs = exec(t, stubSource{products: fixture()}, `{ product(id: "abc") { name } }`)
	require.Empty(t, errs)
	assert.Nil(t, data["product"])
}

func TestCategories(t *testing.T) {
	data, errs := exec(t, stubSource{products: fixture()}, `{ categories { name count subcategories } }`)
	require.Empty(t, errs)
	cats := data["categories"].([]interface{})
	require.Len(t, cats, 2)
	first := cats[0].(map[string]interface{})
	assert.Equal(t, "Sala", first["name"])
	assert.EqualValues(t, 2, first["count"])
	assert.Equal(t, []interface{}{"Sofás", "Mesas"}, first["subcategories"])
}

func TestSourceError(t *testing.T) {
	_, errs := exec(t, stubSource{err: errors.New("upstream down")}, `{ categories { name } }`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "upstream down")
}

func TestExtension(t *testing.T) {
	gqlregistry.Register("test_echo", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"got": args["x"]}, nil
	})
	defer gqlregistry.Unregister("test_echo")

	data, errs := exec(t, stubSource{}, `{ _extension(name: "test_echo", args: "{\"x\":1}") }`)
	require.Empty(t, errs)
	assert.JSONEq(t, `{"got":1}`, data["_extension"].(string))

	_, errs = exec(t, stubSource{}, `{ _extension(name: "missing") }`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "unknown extension")
}
