// internal/workers/booking/parse-booking-window/handler.go
package parsebookingwindow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	"fleet-workers/internal/availability"
	apperrors "fleet-workers/internal/common/errors"
	"fleet-workers/internal/common/logger"
)

const (
	TaskType = "parse-booking-window"
)

var (
	ErrInvalidTimeWindow = errors.New("INVALID_TIME_WINDOW")
	ErrInvalidRequest    = errors.New("REQUEST_VALIDATION_FAILED")
)

// requestSchema guards the raw process variables before any parsing.
const requestSchema = `{
	"type": "object",
	"properties": {
		"userId": {"type": "integer", "minimum": 1},
		"startTime": {"type": "string", "minLength": 1},
		"endTime": {"type": "string", "minLength": 1}
	},
	"required": ["userId", "startTime", "endTime"]
}`

type Handler struct {
	config    *Config
	schema    *gojsonschema.Schema
	logger    logger.Logger
	errHandle *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}
	scopedLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		schema:    schema,
		logger:    scopedLog,
		errHandle: apperrors.NewErrorHandler(scopedLog),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errHandle.HandleJobError(context.Background(), client, job,
			apperrors.NewRequestValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, job.Variables, &input)
	if err != nil {
		stdErr := apperrors.NewInvalidTimeWindowError(err.Error())
		if errors.Is(err, ErrInvalidRequest) {
			stdErr = apperrors.NewRequestValidationFailedError(err.Error())
		}
		h.errHandle.HandleJobError(ctx, client, job, stdErr)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, rawVariables string, input *Input) (*Output, error) {
	result, err := h.schema.Validate(gojsonschema.NewStringLoader(rawVariables))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, formatSchemaErrors(result))
	}

	window, err := availability.ParseTimeWindow(input.StartTime, input.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start=%q end=%q", ErrInvalidTimeWindow, input.StartTime, input.EndTime)
	}

	return &Output{
		UserID:          input.UserID,
		StartTime:       window.Start.UTC().Format(time.RFC3339),
		EndTime:         window.End.UTC().Format(time.RFC3339),
		DurationMinutes: int64(window.Duration().Minutes()),
	}, nil
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	msg := ""
	for i, desc := range result.Errors() {
		if i > 0 {
			msg += "; "
		}
		msg += desc.String()
	}
	return msg
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute exposes the validation step for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, rawVariables string, input *Input) (*Output, error) {
	return h.execute(ctx, rawVariables, input)
}
