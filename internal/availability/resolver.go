// internal/availability/resolver.go
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"fleet-workers/internal/common/logger"
)

// Sentinel errors surfaced by the resolver and its collaborators.
var (
	ErrInvalidTimeWindow = errors.New("INVALID_TIME_WINDOW")
	ErrUserNotFound      = errors.New("USER_NOT_FOUND")
	ErrRoleNotAssigned   = errors.New("ROLE_NOT_ASSIGNED")
	ErrDriverNotFound    = errors.New("DRIVER_NOT_FOUND")
)

// Resolver runs the availability pipeline: entitlement lookup, candidate
// collection, conflict filtering, and result assembly. It is stateless
// and safe for concurrent use.
type Resolver struct {
	directory Directory
	roles     RoleCatalog
	catalog   VehicleCatalog
	schedule  Schedule
	logger    logger.Logger
}

// NewResolver wires the collaborators together.
func NewResolver(
	directory Directory,
	roles RoleCatalog,
	catalog VehicleCatalog,
	schedule Schedule,
	log logger.Logger,
) *Resolver {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Resolver{
		directory: directory,
		roles:     roles,
		catalog:   catalog,
		schedule:  schedule,
		logger:    log,
	}
}

// ResolveFreeVehicles returns the vehicles the user may book for the
// window, with conflicting candidates removed. The pipeline
// short-circuits on the first empty stage: an empty result is a valid
// answer, distinct from the sentinel errors for bad input, unknown user,
// and missing role.
func (r *Resolver) ResolveFreeVehicles(ctx context.Context, userID int64, window TimeWindow) ([]FreeVehicle, error) {
	if !window.Start.Before(window.End) {
		return nil, ErrInvalidTimeWindow
	}
	if userID <= 0 {
		return nil, ErrUserNotFound
	}

	roleID, err := r.directory.Role(ctx, userID)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := r.roles.PermittedCategories(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("permitted categories for role %d: %w", roleID, err)
	}
	if len(categoryIDs) == 0 {
		r.logger.Debug("role has no permitted categories", map[string]interface{}{
			"userId": userID,
			"roleId": roleID,
		})
		return []FreeVehicle{}, nil
	}

	candidates, err := r.catalog.VehiclesByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("vehicles for categories %v: %w", categoryIDs, err)
	}
	if len(candidates) == 0 {
		return []FreeVehicle{}, nil
	}

	reservations, err := r.schedule.OverlappingReservations(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("overlapping reservations: %w", err)
	}

	free := filterConflicts(window, candidates, reservations)

	r.logger.Debug("availability resolved", map[string]interface{}{
		"userId":     userID,
		"candidates": len(candidates),
		"conflicts":  len(candidates) - len(free),
		"free":       len(free),
	})

	return r.assemble(ctx, free)
}

// filterConflicts removes every candidate whose car id or driver id is
// blocked by an overlapping reservation. Vehicles without a driver are
// only tested on the car criterion. Reservations with start >= end are
// ignored as malformed; the store contract already filters by window, so
// the overlap check here guards stores that return a superset.
func filterConflicts(window TimeWindow, candidates []Vehicle, reservations []Reservation) []Vehicle {
	blockedCars := make(map[int64]struct{}, len(reservations))
	blockedDrivers := make(map[int64]struct{}, len(reservations))
	for _, res := range reservations {
		if !res.Start.Before(res.End) {
			continue
		}
		if !window.Overlaps(res.Start, res.End) {
			continue
		}
		blockedCars[res.CarID] = struct{}{}
		if res.DriverID != nil {
			blockedDrivers[*res.DriverID] = struct{}{}
		}
	}

	free := make([]Vehicle, 0, len(candidates))
	for _, v := range candidates {
		if _, blocked := blockedCars[v.ID]; blocked {
			continue
		}
		if v.DriverID != nil {
			if _, blocked := blockedDrivers[*v.DriverID]; blocked {
				continue
			}
		}
		free = append(free, v)
	}
	return free
}

// assemble builds the client-facing records in ascending vehicle id
// order, substituting the placeholder for missing names and
// unresolvable drivers.
func (r *Resolver) assemble(ctx context.Context, vehicles []Vehicle) ([]FreeVehicle, error) {
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })

	result := make([]FreeVehicle, 0, len(vehicles))
	for _, v := range vehicles {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			name = NamePlaceholder
		}

		driver := NamePlaceholder
		if v.DriverID != nil {
			display, err := r.directory.DriverDisplayName(ctx, *v.DriverID)
			switch {
			case errors.Is(err, ErrDriverNotFound):
				// Stale driver reference: keep the vehicle, placeholder name.
				r.logger.Warn("driver reference unresolvable", map[string]interface{}{
					"vehicleId": v.ID,
					"driverId":  *v.DriverID,
				})
			case err != nil:
				return nil, fmt.Errorf("driver display name for %d: %w", *v.DriverID, err)
			default:
				if display = strings.TrimSpace(display); display != "" {
					driver = display
				}
			}
		}

		result = append(result, FreeVehicle{
			Name:       name,
			CategoryID: v.CategoryID,
			Driver:     driver,
		})
	}
	return result, nil
}
