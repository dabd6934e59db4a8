// Package fleet provides the Postgres/Redis/Elasticsearch backed
// implementations of the availability collaborator interfaces.
package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
)

// DirectoryStore resolves users and drivers from the company directory
// tables, caching driver display names in Redis.
type DirectoryStore struct {
	db            *sql.DB
	redis         *redis.Client
	driverNameTTL time.Duration
	logger        logger.Logger
}

func NewDirectoryStore(db *sql.DB, rdb *redis.Client, driverNameTTL time.Duration, log logger.Logger) *DirectoryStore {
	return &DirectoryStore{
		db:            db,
		redis:         rdb,
		driverNameTTL: driverNameTTL,
		logger:        log.WithFields(map[string]interface{}{"store": "directory"}),
	}
}

// Role returns the job role assigned to the user. A missing row maps to
// ErrUserNotFound, a NULL job_id to ErrRoleNotAssigned.
func (s *DirectoryStore) Role(ctx context.Context, userID int64) (int64, error) {
	var jobID sql.NullInt64
	query := `SELECT job_id FROM users WHERE id = $1 AND active = TRUE`
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, availability.ErrUserNotFound
		}
		return 0, fmt.Errorf("query user %d: %w", userID, err)
	}
	if !jobID.Valid || jobID.Int64 == 0 {
		return 0, availability.ErrRoleNotAssigned
	}
	return jobID.Int64, nil
}

// DriverDisplayName returns "First Last" for the driver, trimmed, with a
// Redis cache in front of the users table.
func (s *DirectoryStore) DriverDisplayName(ctx context.Context, driverID int64) (string, error) {
	cacheKey := fmt.Sprintf("driver:name:%d", driverID)
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			return val, nil
		}
	}

	var firstName, lastName sql.NullString
	query := `SELECT first_name, last_name FROM users WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, driverID).Scan(&firstName, &lastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", availability.ErrDriverNotFound
		}
		return "", fmt.Errorf("query driver %d: %w", driverID, err)
	}

	name := strings.TrimSpace(firstName.String + " " + lastName.String)
	if s.redis != nil && name != "" {
		if err := s.redis.Set(ctx, cacheKey, name, s.driverNameTTL).Err(); err != nil {
			s.logger.Warn("driver name cache write failed", map[string]interface{}{
				"driverId": driverID,
				"error":    err.Error(),
			})
		}
	}
	return name, nil
}
