// internal/fleet/catalog.go
package fleet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
)

// CatalogStore lists bookable vehicles from the Postgres fleet tables.
type CatalogStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewCatalogStore(db *sql.DB, log logger.Logger) *CatalogStore {
	return &CatalogStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "catalog"}),
	}
}

// VehiclesByCategories returns all active vehicles in the given comfort
// categories, ordered by id so downstream output stays deterministic.
func (s *CatalogStore) VehiclesByCategories(ctx context.Context, categoryIDs []int64) ([]availability.Vehicle, error) {
	if len(categoryIDs) == 0 {
		return []availability.Vehicle{}, nil
	}

	query := `
		SELECT id, COALESCE(model, ''), category_id, driver_id
		FROM vehicles
		WHERE active = TRUE AND category_id = ANY($1)
		ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]availability.Vehicle, 0, 16)
	for rows.Next() {
		var (
			v        availability.Vehicle
			driverID sql.NullInt64
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.CategoryID, &driverID); err != nil {
			return nil, fmt.Errorf("scan vehicle row: %w", err)
		}
		if driverID.Valid {
			id := driverID.Int64
			v.DriverID = &id
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicle rows: %w", err)
	}

	return vehicles, nil
}
