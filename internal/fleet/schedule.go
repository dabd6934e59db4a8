// internal/fleet/schedule.go
package fleet

import (
	"context"
	"database/sql"
	"fmt"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
)

// ScheduleStore reads existing reservations from the schedule table.
type ScheduleStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewScheduleStore(db *sql.DB, log logger.Logger) *ScheduleStore {
	return &ScheduleStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "schedule"}),
	}
}

// OverlappingReservations returns every well-formed reservation that
// strictly overlaps the window. Touching intervals are excluded by the
// strict comparison, and inverted rows by the start < end guard.
func (s *ScheduleStore) OverlappingReservations(ctx context.Context, window availability.TimeWindow) ([]availability.Reservation, error) {
	query := `
		SELECT car_id, driver_id, start_time, end_time
		FROM schedule
		WHERE start_time < end_time
		  AND start_time < $2
		  AND end_time > $1
		ORDER BY start_time`
	rows, err := s.db.QueryContext(ctx, query, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]availability.Reservation, 0, 16)
	for rows.Next() {
		var (
			r        availability.Reservation
			driverID sql.NullInt64
		)
		if err := rows.Scan(&r.CarID, &driverID, &r.Start, &r.End); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		if driverID.Valid {
			id := driverID.Int64
			r.DriverID = &id
		}
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}

	return reservations, nil
}
