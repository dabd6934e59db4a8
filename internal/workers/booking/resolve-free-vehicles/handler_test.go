// internal/workers/booking/resolve-free-vehicles/handler_test.go
package resolvefreevehicles

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

const (
	roleQuery       = `SELECT job_id FROM users WHERE id = $1 AND active = TRUE`
	categoriesQuery = `SELECT category_id FROM job_comfort_categories WHERE job_id = $1 ORDER BY category_id`
	driverNameQuery = `SELECT first_name, last_name FROM users WHERE id = $1`
)

func createTestConfig() *Config {
	return &Config{
		Timeout:           10 * time.Second,
		RoleCategoriesTTL: 5 * time.Minute,
		DriverNameTTL:     10 * time.Minute,
	}
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client) *Handler {
	t.Helper()
	return NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t))
}

func createInput(userID int64) *Input {
	return &Input{
		UserID:    userID,
		StartTime: "2026-09-01T09:00:00Z",
		EndTime:   "2026-09-01T17:00:00Z",
	}
}

func newMocks(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *redis.Client, redismock.ClientMock) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rdb, redisMock := redismock.NewClientMock()
	return db, dbMock, rdb, redisMock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	db, dbMock, rdb, redisMock := newMocks(t)
	handler := createTestHandler(t, db, rdb)
	input := createInput(1)

	windowStart := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	windowEnd := windowStart.Add(8 * time.Hour)

	// Stage 1-2: role and permitted categories.
	dbMock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(10)))
	redisMock.ExpectGet("role:categories:10").RedisNil()
	dbMock.ExpectQuery(regexp.QuoteMeta(categoriesQuery)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"category_id"}).
			AddRow(int64(1)).
			AddRow(int64(2)))
	redisMock.ExpectSet("role:categories:10", []byte("[1,2]"), 5*time.Minute).SetVal("OK")

	// Stage 3: candidate vehicles.
	dbMock.ExpectQuery(`SELECT id, COALESCE\(model, ''\), category_id, driver_id`).
		WithArgs(pq.Array([]int64{1, 2})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "model", "category_id", "driver_id"}).
			AddRow(int64(1), "Toyota Camry", int64(1), int64(100)).
			AddRow(int64(2), "Kia Rio", int64(2), nil))

	// Stage 4: one reservation blocking car 1.
	dbMock.ExpectQuery(`SELECT car_id, driver_id, start_time, end_time`).
		WithArgs(windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{"car_id", "driver_id", "start_time", "end_time"}).
			AddRow(int64(1), int64(100), windowStart.Add(time.Hour), windowStart.Add(2*time.Hour)))

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	require.Len(t, output.FreeVehicles, 1)
	assert.Equal(t, availability.FreeVehicle{
		Name:       "Kia Rio",
		CategoryID: 2,
		Driver:     availability.NamePlaceholder,
	}, output.FreeVehicles[0])
	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_DriverNameResolvedFromCache(t *testing.T) {
	db, dbMock, rdb, redisMock := newMocks(t)
	handler := createTestHandler(t, db, rdb)
	input := createInput(1)

	dbMock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(10)))
	redisMock.ExpectGet("role:categories:10").SetVal("[1]")
	dbMock.ExpectQuery(`SELECT id, COALESCE\(model, ''\), category_id, driver_id`).
		WithArgs(pq.Array([]int64{1})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "model", "category_id", "driver_id"}).
			AddRow(int64(1), "Toyota Camry", int64(1), int64(100)))
	dbMock.ExpectQuery(`SELECT car_id, driver_id, start_time, end_time`).
		WillReturnRows(sqlmock.NewRows([]string{"car_id", "driver_id", "start_time", "end_time"}))
	redisMock.ExpectGet("driver:name:100").SetVal("Ivan Petrov")

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	require.Len(t, output.FreeVehicles, 1)
	assert.Equal(t, "Ivan Petrov", output.FreeVehicles[0].Driver)
	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyCategoriesIsValidEmptyResult(t *testing.T) {
	db, dbMock, rdb, redisMock := newMocks(t)
	handler := createTestHandler(t, db, rdb)
	input := createInput(1)

	dbMock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(11)))
	redisMock.ExpectGet("role:categories:11").SetVal("[]")

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Zero(t, output.Count)
	assert.Empty(t, output.FreeVehicles)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_BusinessErrors(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		db, dbMock, rdb, _ := newMocks(t)
		handler := createTestHandler(t, db, rdb)

		dbMock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
			WithArgs(int64(999)).
			WillReturnRows(sqlmock.NewRows([]string{"job_id"}))

		_, err := handler.Execute(context.Background(), createInput(999))

		assert.ErrorIs(t, err, availability.ErrUserNotFound)
	})

	t.Run("role not assigned", func(t *testing.T) {
		db, dbMock, rdb, _ := newMocks(t)
		handler := createTestHandler(t, db, rdb)

		dbMock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(nil))

		_, err := handler.Execute(context.Background(), createInput(2))

		assert.ErrorIs(t, err, availability.ErrRoleNotAssigned)
	})

	t.Run("invalid window", func(t *testing.T) {
		db, _, rdb, _ := newMocks(t)
		handler := createTestHandler(t, db, rdb)

		_, err := handler.Execute(context.Background(), &Input{
			UserID:    1,
			StartTime: "2026-09-01T17:00:00Z",
			EndTime:   "2026-09-01T09:00:00Z",
		})

		assert.ErrorIs(t, err, availability.ErrInvalidTimeWindow)
	})
}

func TestHandler_Execute_StoreFailureWrapsFleetQueryFailed(t *testing.T) {
	db, dbMock, rdb, _ := newMocks(t)
	handler := createTestHandler(t, db, rdb)

	dbMock.ExpectQuery(regexp.QuoteMeta(roleQuery)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(10)))
	dbMock.ExpectQuery(regexp.QuoteMeta(categoriesQuery)).
		WillReturnError(assert.AnError)

	_, err := handler.Execute(context.Background(), createInput(1))

	assert.ErrorIs(t, err, ErrFleetQueryFailed)
}

// ==========================
// Error Classification Tests
// ==========================

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedCode    string
		expectedRetries int32
	}{
		{"invalid window", availability.ErrInvalidTimeWindow, "INVALID_TIME_WINDOW", 0},
		{"user not found", availability.ErrUserNotFound, "USER_NOT_FOUND", 0},
		{"role not assigned", availability.ErrRoleNotAssigned, "ROLE_NOT_ASSIGNED", 0},
		{"timeout", ErrQueryTimeout, "QUERY_TIMEOUT", 2},
		{"store failure", ErrFleetQueryFailed, "FLEET_QUERY_FAILED", 3},
		{"unknown failure", assert.AnError, "FLEET_QUERY_FAILED", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, retries := classifyError(tt.err)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectedRetries, retries)
		})
	}
}
