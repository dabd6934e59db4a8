// internal/workers/booking/parse-booking-window/config.go
package parsebookingwindow

import "time"

// Pure validation step, so only the job timeout is configurable.
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
