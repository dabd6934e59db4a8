// internal/fleet/schedule_test.go
package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
)

func newScheduleStore(t *testing.T) (*ScheduleStore, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewScheduleStore(db, logger.NewTestLogger(t)), dbMock
}

func scheduleTestWindow() availability.TimeWindow {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	return availability.TimeWindow{Start: start, End: start.Add(8 * time.Hour)}
}

func TestScheduleStore_OverlappingReservations(t *testing.T) {
	t.Run("returns overlapping reservations with window bounds as args", func(t *testing.T) {
		store, dbMock := newScheduleStore(t)
		window := scheduleTestWindow()

		dbMock.ExpectQuery(`SELECT car_id, driver_id, start_time, end_time`).
			WithArgs(window.Start, window.End).
			WillReturnRows(sqlmock.NewRows([]string{"car_id", "driver_id", "start_time", "end_time"}).
				AddRow(int64(1), int64(100), window.Start.Add(time.Hour), window.Start.Add(2*time.Hour)).
				AddRow(int64(2), nil, window.Start, window.End))

		reservations, err := store.OverlappingReservations(context.Background(), window)

		require.NoError(t, err)
		require.Len(t, reservations, 2)
		assert.Equal(t, int64(1), reservations[0].CarID)
		require.NotNil(t, reservations[0].DriverID)
		assert.Equal(t, int64(100), *reservations[0].DriverID)
		assert.Nil(t, reservations[1].DriverID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("no conflicts yields empty slice", func(t *testing.T) {
		store, dbMock := newScheduleStore(t)
		window := scheduleTestWindow()

		dbMock.ExpectQuery(`SELECT car_id, driver_id, start_time, end_time`).
			WithArgs(window.Start, window.End).
			WillReturnRows(sqlmock.NewRows([]string{"car_id", "driver_id", "start_time", "end_time"}))

		reservations, err := store.OverlappingReservations(context.Background(), window)

		require.NoError(t, err)
		assert.Empty(t, reservations)
	})

	t.Run("query failure propagates", func(t *testing.T) {
		store, dbMock := newScheduleStore(t)

		dbMock.ExpectQuery(`SELECT car_id, driver_id, start_time, end_time`).
			WillReturnError(assert.AnError)

		_, err := store.OverlappingReservations(context.Background(), scheduleTestWindow())

		assert.Error(t, err)
	})
}
