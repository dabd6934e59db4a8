// internal/workers/booking/notify-availability/models.go
package notifyavailability

type Input struct {
	UserID    int64  `json:"userId"`
	RequestID string `json:"requestId,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Count     int    `json:"count"`
	Priority  string `json:"priority,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
