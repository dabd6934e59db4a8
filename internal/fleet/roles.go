// internal/fleet/roles.go
package fleet

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-workers/internal/common/logger"
)

// RoleStore maps job roles to their permitted comfort categories. The
// mapping changes rarely, so lookups are cached in Redis.
type RoleStore struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewRoleStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *RoleStore {
	return &RoleStore{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"store": "roles"}),
	}
}

// PermittedCategories returns the comfort category ids the role may
// book, ascending. An empty slice is a valid answer and is cached too,
// so roles without entitlements do not hammer the database.
func (s *RoleStore) PermittedCategories(ctx context.Context, roleID int64) ([]int64, error) {
	cacheKey := fmt.Sprintf("role:categories:%d", roleID)
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached []int64
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	query := `SELECT category_id FROM job_comfort_categories WHERE job_id = $1 ORDER BY category_id`
	rows, err := s.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("query categories for role %d: %w", roleID, err)
	}
	defer rows.Close()

	categories := make([]int64, 0, 4)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(categories); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("role categories cache write failed", map[string]interface{}{
					"roleId": roleID,
					"error":  err.Error(),
				})
			}
		}
	}

	return categories, nil
}
