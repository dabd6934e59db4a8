// internal/workers/booking/build-availability-response/models.go
package buildavailabilityresponse

import "fleet-workers/internal/availability"

type Input struct {
	RequestID    string                      `json:"requestId,omitempty"`
	FreeVehicles []availability.FreeVehicle  `json:"freeVehicles,omitempty"`
	Count        int                         `json:"count,omitempty"`
	ErrorCode    string                      `json:"errorCode,omitempty"`
	ErrorMessage string                      `json:"errorMessage,omitempty"`
}

type Output struct {
	Response ResponsePayload `json:"response"`
}

// ResponsePayload is the client-facing envelope. Data and Error are
// mutually exclusive.
type ResponsePayload struct {
	RequestID string            `json:"requestId"`
	Status    string            `json:"status"` // "success" or "error"
	Data      *AvailabilityData `json:"data,omitempty"`
	Error     *ResponseError    `json:"error,omitempty"`
	Metadata  ResponseMetadata  `json:"metadata"`
}

type AvailabilityData struct {
	Vehicles []availability.FreeVehicle `json:"vehicles"`
	Count    int                        `json:"count"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResponseMetadata struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)
