package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	entity "catalog.GO/model/entity"
)

// Indexer mirrors a catalog snapshot into an Elasticsearch index so that
// external tools can query it. The storefront itself searches in memory.
type Indexer struct {
	client *elasticsearch.Client
	index  string
}

// NewIndexer builds an Indexer for the node at host.
func NewIndexer(host, index string) (*Indexer, error) {
	if host == "" {
		return nil, fmt.Errorf("elasticsearch not configured")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{host},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Indexer{client: client, index: index}, nil
}

type indexedProduct struct {
	entity.Product
	// Searchable holds exactly the fields the storefront matches against.
	Searchable string `json:"searchable"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// IndexProducts upserts products keyed by product id and returns how many
// documents were written.
func (ix *Indexer) IndexProducts(ctx context.Context, products []entity.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, p := range products {
		meta := map[string]map[string]string{"index": {"_id": strconv.FormatInt(p.ID, 10)}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		doc := indexedProduct{
			Product:    p,
			Searchable: CreateSearchableText(p.Name, p.Manufacturer, p.ManufacturerCode, p.ProductReference),
		}
		if err := enc.Encode(doc); err != nil {
			return 0, err
		}
	}

	res, err := ix.client.Bulk(
		&body,
		ix.client.Bulk.WithContext(ctx),
		ix.client.Bulk.WithIndex(ix.index),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}
	indexed := 0
	var firstErr error
	for _, item := range br.Items {
		for _, r := range item {
			if r.Error != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("document %s: %s: %s", r.ID, r.Error.Type, r.Error.Reason)
				}
				continue
			}
			indexed++
		}
	}
	if br.Errors && firstErr != nil {
		return indexed, firstErr
	}
	return indexed, nil
}
