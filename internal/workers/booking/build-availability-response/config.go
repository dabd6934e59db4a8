// internal/workers/booking/build-availability-response/config.go
package buildavailabilityresponse

import "time"

type Config struct {
	Timeout    time.Duration
	AppVersion string
}

func LoadConfig(appVersion string) *Config {
	if appVersion == "" {
		appVersion = "dev"
	}
	return &Config{
		Timeout:    10 * time.Second,
		AppVersion: appVersion,
	}
}
