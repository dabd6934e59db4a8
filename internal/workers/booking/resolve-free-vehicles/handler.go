// internal/workers/booking/resolve-free-vehicles/handler.go
package resolvefreevehicles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"fleet-workers/internal/availability"
	"fleet-workers/internal/common/logger"
	"fleet-workers/internal/common/metrics"
	"fleet-workers/internal/fleet"
)

const (
	TaskType = "resolve-free-vehicles"
)

var (
	ErrFleetQueryFailed = errors.New("FLEET_QUERY_FAILED")
	ErrQueryTimeout     = errors.New("QUERY_TIMEOUT")
)

type Handler struct {
	config   *Config
	resolver *availability.Resolver
	logger   logger.Logger
}

// NewHandler wires the Postgres/Redis stores into the resolver.
func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	directory := fleet.NewDirectoryStore(db, rdb, config.DriverNameTTL, log)
	roles := fleet.NewRoleStore(db, rdb, config.RoleCategoriesTTL, log)
	catalog := fleet.NewCatalogStore(db, log)
	schedule := fleet.NewScheduleStore(db, log)

	return newHandler(config, availability.NewResolver(directory, roles, catalog, schedule, log), log)
}

// NewHandlerWithSearchCatalog swaps the vehicle catalog for the
// Elasticsearch-backed variant; directory, roles and schedule stay on
// Postgres/Redis.
func NewHandlerWithSearchCatalog(
	config *Config,
	db *sql.DB,
	rdb *redis.Client,
	esClient *elasticsearch.Client,
	vehicleIndex string,
	log logger.Logger,
) *Handler {
	directory := fleet.NewDirectoryStore(db, rdb, config.DriverNameTTL, log)
	roles := fleet.NewRoleStore(db, rdb, config.RoleCategoriesTTL, log)
	catalog := fleet.NewSearchCatalogStore(esClient, vehicleIndex, log)
	schedule := fleet.NewScheduleStore(db, log)

	return newHandler(config, availability.NewResolver(directory, roles, catalog, schedule, log), log)
}

// NewHandlerWithResolver injects a fully built resolver; used by tests.
func NewHandlerWithResolver(config *Config, resolver *availability.Resolver, log logger.Logger) *Handler {
	return newHandler(config, resolver, log)
}

func newHandler(config *Config, resolver *availability.Resolver, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		resolver: resolver,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode, retries := classifyError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		metrics.AvailabilityResolutions.WithLabelValues(errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.AvailabilityResolutions.WithLabelValues("success").Inc()
	metrics.AvailabilityVehiclesReturned.Observe(float64(output.Count))

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	window, err := availability.ParseTimeWindow(input.StartTime, input.EndTime)
	if err != nil {
		return nil, availability.ErrInvalidTimeWindow
	}

	freeVehicles, err := h.resolver.ResolveFreeVehicles(ctx, input.UserID, window)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidTimeWindow),
			errors.Is(err, availability.ErrUserNotFound),
			errors.Is(err, availability.ErrRoleNotAssigned):
			return nil, err
		case ctx.Err() == context.DeadlineExceeded:
			return nil, ErrQueryTimeout
		default:
			return nil, fmt.Errorf("%w: %v", ErrFleetQueryFailed, err)
		}
	}

	return &Output{
		FreeVehicles: freeVehicles,
		Count:        len(freeVehicles),
	}, nil
}

// classifyError maps pipeline errors onto BPMN error codes and retry
// budgets. Business outcomes never retry; store failures do.
func classifyError(err error) (string, int32) {
	switch {
	case errors.Is(err, availability.ErrInvalidTimeWindow):
		return "INVALID_TIME_WINDOW", 0
	case errors.Is(err, availability.ErrUserNotFound):
		return "USER_NOT_FOUND", 0
	case errors.Is(err, availability.ErrRoleNotAssigned):
		return "ROLE_NOT_ASSIGNED", 0
	case errors.Is(err, ErrQueryTimeout):
		return "QUERY_TIMEOUT", 2
	default:
		return "FLEET_QUERY_FAILED", 3
	}
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute exposes the resolution step for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
