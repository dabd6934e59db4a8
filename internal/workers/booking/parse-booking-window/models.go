// internal/workers/booking/parse-booking-window/models.go
package parsebookingwindow

type Input struct {
	UserID    int64  `json:"userId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type Output struct {
	UserID int64 `json:"userId"`
	// Normalized RFC3339 UTC instants consumed by resolve-free-vehicles.
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int64  `json:"durationMinutes"`
}
