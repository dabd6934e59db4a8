// internal/workers/booking/resolve-free-vehicles/models.go
package resolvefreevehicles

import "fleet-workers/internal/availability"

type Input struct {
	UserID    int64  `json:"userId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type Output struct {
	FreeVehicles []availability.FreeVehicle `json:"freeVehicles"`
	Count        int                        `json:"count"`
}
