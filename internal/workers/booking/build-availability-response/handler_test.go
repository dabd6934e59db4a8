// internal/workers/booking/build-availability-response/handler_test.go
package buildavailabilityresponse

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(&Config{Timeout: 5 * time.Second, AppVersion: "1.2.3"}, logger.NewTestLogger(t))
}

func sampleVehicles() []availability.FreeVehicle {
	return []availability.FreeVehicle{
		{Name: "Toyota Camry", CategoryID: 1, Driver: "Ivan Petrov"},
		{Name: availability.NamePlaceholder, CategoryID: 2, Driver: availability.NamePlaceholder},
	}
}

// ==========================
// Success Envelope Tests
// ==========================

func TestHandler_Execute_SuccessEnvelope(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RequestID:    "req-42",
		FreeVehicles: sampleVehicles(),
		Count:        2,
	})

	require.NoError(t, err)
	resp := output.Response
	assert.Equal(t, "req-42", resp.RequestID)
	assert.Equal(t, StatusSuccess, resp.Status)
	require.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Equal(t, 2, resp.Data.Count)
	assert.Equal(t, sampleVehicles(), resp.Data.Vehicles)
	assert.Equal(t, "1.2.3", resp.Metadata.Version)

	_, parseErr := time.Parse(time.RFC3339, resp.Metadata.Timestamp)
	assert.NoError(t, parseErr)
}

func TestHandler_Execute_GeneratesRequestIDWhenMissing(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{FreeVehicles: sampleVehicles()})

	require.NoError(t, err)
	_, parseErr := uuid.Parse(output.Response.RequestID)
	assert.NoError(t, parseErr)
}

func TestHandler_Execute_EmptyResultIsSuccess(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{RequestID: "req-1"})

	require.NoError(t, err)
	resp := output.Response
	assert.Equal(t, StatusSuccess, resp.Status)
	require.NotNil(t, resp.Data)
	assert.NotNil(t, resp.Data.Vehicles)
	assert.Empty(t, resp.Data.Vehicles)
	assert.Zero(t, resp.Data.Count)
	assert.Nil(t, resp.Error)
}

// ==========================
// Error Envelope Tests
// ==========================

func TestHandler_Execute_ErrorEnvelope(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		RequestID:    "req-9",
		ErrorCode:    "USER_NOT_FOUND",
		ErrorMessage: "Requesting user does not exist in the directory",
	})

	require.NoError(t, err)
	resp := output.Response
	assert.Equal(t, StatusError, resp.Status)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "USER_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Requesting user does not exist in the directory", resp.Error.Message)
}

func TestHandler_Execute_RejectsErrorAndDataTogether(t *testing.T) {
	handler := createTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		RequestID:    "req-13",
		FreeVehicles: sampleVehicles(),
		ErrorCode:    "FLEET_QUERY_FAILED",
	})

	assert.ErrorIs(t, err, ErrResponseBuildFailed)
}
