// Package availability resolves which vehicles of a corporate fleet are
// free for a requested time window, honoring the requesting user's
// comfort-category entitlements. The package is pure domain logic: all
// data access goes through the collaborator interfaces below.
package availability

import (
	"context"
	"time"
)

// NamePlaceholder substitutes a missing vehicle name or an unresolvable
// driver in assembled results.
const NamePlaceholder = "—"

// TimeWindow is a validated booking window with Start strictly before End.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Vehicle is a fleet vehicle eligible for booking.
type Vehicle struct {
	ID         int64
	Name       string
	CategoryID int64
	DriverID   *int64
}

// Reservation is an existing schedule entry blocking a car and,
// optionally, a driver.
type Reservation struct {
	CarID    int64
	DriverID *int64
	Start    time.Time
	End      time.Time
}

// FreeVehicle is one entry of the resolved availability result.
type FreeVehicle struct {
	Name       string `json:"name"`
	CategoryID int64  `json:"categoryId"`
	Driver     string `json:"driver"`
}

// Directory resolves users and drivers from the company directory.
type Directory interface {
	// Role returns the job role id assigned to the user.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrRoleNotAssigned if the user has no role reference.
	Role(ctx context.Context, userID int64) (int64, error)

	// DriverDisplayName returns the display name for a driver.
	// Returns ErrDriverNotFound if the driver cannot be resolved.
	DriverDisplayName(ctx context.Context, driverID int64) (string, error)
}

// RoleCatalog maps job roles to the comfort categories they may book.
type RoleCatalog interface {
	// PermittedCategories returns the comfort category ids permitted for
	// the role. An empty slice is a valid answer.
	PermittedCategories(ctx context.Context, roleID int64) ([]int64, error)
}

// VehicleCatalog lists bookable vehicles.
type VehicleCatalog interface {
	// VehiclesByCategories returns all vehicles whose category is in the
	// given set, ordered by ascending vehicle id.
	VehiclesByCategories(ctx context.Context, categoryIDs []int64) ([]Vehicle, error)
}

// Schedule exposes existing reservations.
type Schedule interface {
	// OverlappingReservations returns every reservation that overlaps the
	// window under the strict convention (start < window.End AND
	// end > window.Start). Malformed rows (start >= end) are omitted.
	OverlappingReservations(ctx context.Context, window TimeWindow) ([]Reservation, error)
}
