// internal/fleet/catalog_es.go
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
)

// maxCatalogHits caps a single catalog query; corporate fleets are far
// smaller than this.
const maxCatalogHits = 1000

// SearchCatalogStore is the Elasticsearch-backed vehicle catalog for
// deployments that index the fleet for search.
type SearchCatalogStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchCatalogStore(client *elasticsearch.Client, index string, log logger.Logger) *SearchCatalogStore {
	return &SearchCatalogStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"store": "catalog-es"}),
	}
}

type vehicleDocument struct {
	ID         int64  `json:"id"`
	Model      string `json:"model"`
	CategoryID int64  `json:"category_id"`
	DriverID   *int64 `json:"driver_id"`
	Active     bool   `json:"active"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source vehicleDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// VehiclesByCategories runs a terms query over the vehicle index,
// sorted by id to match the Postgres catalog's ordering.
func (s *SearchCatalogStore) VehiclesByCategories(ctx context.Context, categoryIDs []int64) ([]availability.Vehicle, error) {
	if len(categoryIDs) == 0 {
		return []availability.Vehicle{}, nil
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"terms": map[string]interface{}{"category_id": categoryIDs},
					},
					map[string]interface{}{
						"term": map[string]interface{}{"active": true},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
		},
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog query: %w", err)
	}

	size := maxCatalogHits
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("execute catalog query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("catalog query error: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	vehicles := make([]availability.Vehicle, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		vehicles = append(vehicles, availability.Vehicle{
			ID:         doc.ID,
			Name:       doc.Model,
			CategoryID: doc.CategoryID,
			DriverID:   doc.DriverID,
		})
	}

	return vehicles, nil
}
