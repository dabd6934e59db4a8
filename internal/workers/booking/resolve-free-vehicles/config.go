// internal/workers/booking/resolve-free-vehicles/config.go
package resolvefreevehicles

import "time"

type Config struct {
	Timeout           time.Duration
	RoleCategoriesTTL time.Duration
	DriverNameTTL     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		RoleCategoriesTTL: 5 * time.Minute,
		DriverNameTTL:     10 * time.Minute,
	}
}
