// internal/workers/booking/notify-availability/config.go
package notifyavailability

import "time"

type Config struct {
	Timeout      time.Duration
	AWSRegion    string
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SMSSenderID  string
}

func LoadConfig(region, fromEmail, smsSenderID string, emailEnabled, smsEnabled bool) *Config {
	return &Config{
		Timeout:      30 * time.Second,
		AWSRegion:    region,
		EmailEnabled: emailEnabled,
		FromEmail:    fromEmail,
		SMSEnabled:   smsEnabled,
		SMSSenderID:  smsSenderID,
	}
}
