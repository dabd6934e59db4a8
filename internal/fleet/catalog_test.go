// internal/fleet/catalog_test.go
package fleet

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-workers/internal/common/logger"
)

func newCatalogStore(t *testing.T) (*CatalogStore, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCatalogStore(db, logger.NewTestLogger(t)), dbMock
}

func TestCatalogStore_VehiclesByCategories(t *testing.T) {
	t.Run("returns vehicles ordered by id", func(t *testing.T) {
		store, dbMock := newCatalogStore(t)

		dbMock.ExpectQuery(`SELECT id, COALESCE\(model, ''\), category_id, driver_id`).
			WithArgs(pq.Array([]int64{1, 2})).
			WillReturnRows(sqlmock.NewRows([]string{"id", "model", "category_id", "driver_id"}).
				AddRow(int64(1), "Toyota Camry", int64(1), int64(100)).
				AddRow(int64(2), "Kia Rio", int64(2), nil).
				AddRow(int64(3), "", int64(1), int64(101)))

		vehicles, err := store.VehiclesByCategories(context.Background(), []int64{1, 2})

		require.NoError(t, err)
		require.Len(t, vehicles, 3)
		assert.Equal(t, int64(1), vehicles[0].ID)
		assert.Equal(t, "Toyota Camry", vehicles[0].Name)
		require.NotNil(t, vehicles[0].DriverID)
		assert.Equal(t, int64(100), *vehicles[0].DriverID)
		assert.Nil(t, vehicles[1].DriverID)
		assert.Empty(t, vehicles[2].Name)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("empty category set short-circuits without query", func(t *testing.T) {
		store, dbMock := newCatalogStore(t)

		vehicles, err := store.VehiclesByCategories(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, vehicles)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("no matching vehicles yields empty slice", func(t *testing.T) {
		store, dbMock := newCatalogStore(t)

		dbMock.ExpectQuery(`SELECT id, COALESCE\(model, ''\), category_id, driver_id`).
			WithArgs(pq.Array([]int64{9})).
			WillReturnRows(sqlmock.NewRows([]string{"id", "model", "category_id", "driver_id"}))

		vehicles, err := store.VehiclesByCategories(context.Background(), []int64{9})

		require.NoError(t, err)
		assert.Empty(t, vehicles)
	})

	t.Run("query failure propagates", func(t *testing.T) {
		store, dbMock := newCatalogStore(t)

		dbMock.ExpectQuery(`SELECT id, COALESCE\(model, ''\), category_id, driver_id`).
			WillReturnError(assert.AnError)

		_, err := store.VehiclesByCategories(context.Background(), []int64{1})

		assert.Error(t, err)
	})
}
