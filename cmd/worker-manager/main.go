// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fleet-workers/internal/common/camunda"
	"fleet-workers/internal/common/config"
	"fleet-workers/internal/common/database"
	"fleet-workers/internal/common/logger"
	"fleet-workers/internal/common/observability"
	"fleet-workers/pkg/registry"

	// Booking Workers (4)
	bar "fleet-workers/internal/workers/booking/build-availability-response"
	na "fleet-workers/internal/workers/booking/notify-availability"
	pbw "fleet-workers/internal/workers/booking/parse-booking-window"
	rfv "fleet-workers/internal/workers/booking/resolve-free-vehicles"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (only for the ES-backed catalog) ---
	var esClient *database.ElasticsearchClient
	if cfg.Fleet.CatalogSource == "elasticsearch" {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Load Activity Registry ---
	activityReg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry not loaded", zap.Error(err), zap.String("path", cfg.Registry.Path))
	} else {
		for _, taskType := range []string{pbw.TaskType, rfv.TaskType, bar.TaskType, na.TaskType} {
			if _, ok := activityReg.FindByTaskType(taskType); !ok {
				zapLog.Warn("task type missing from activity registry", zap.String("taskType", taskType))
			}
		}
		zapLog.Info("Activity registry loaded", zap.Int("activities", len(activityReg.Activities)))
	}

	var activeWorkers []*camunda.CamundaWorker
	startWorker := func(taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandlerFunc) {
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		w := camunda.NewWorker(
			zeebeClient,
			taskType,
			wcfg.MaxJobsActive,
			time.Duration(wcfg.Timeout)*time.Millisecond,
			handlerFunc,
			zapLog,
		)
		activeWorkers = append(activeWorkers, w)
	}

	// --- START: Register ALL 4 Workers ---

	// --- 1. Parse Booking Window ---
	if wcfg := cfg.Workers[pbw.TaskType]; wcfg.Enabled {
		handler, err := pbw.NewHandler(
			&pbw.Config{
				Timeout: time.Duration(wcfg.Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create parse-booking-window handler", zap.Error(err))
		}
		startWorker(pbw.TaskType, wcfg, handler.Handle)
	}

	// --- 2. Resolve Free Vehicles ---
	if wcfg := cfg.Workers[rfv.TaskType]; wcfg.Enabled {
		rfvConfig := &rfv.Config{
			Timeout:           time.Duration(wcfg.Timeout) * time.Millisecond,
			RoleCategoriesTTL: time.Duration(cfg.Fleet.Cache.RoleCategoriesTTL) * time.Second,
			DriverNameTTL:     time.Duration(cfg.Fleet.Cache.DriverNameTTL) * time.Second,
		}

		var handler *rfv.Handler
		if cfg.Fleet.CatalogSource == "elasticsearch" {
			handler = rfv.NewHandlerWithSearchCatalog(
				rfvConfig, pg.DB, redis.Client, esClient.Client, cfg.Fleet.VehicleIndex, log,
			)
		} else {
			handler = rfv.NewHandler(rfvConfig, pg.DB, redis.Client, log)
		}
		startWorker(rfv.TaskType, wcfg, handler.Handle)
	}

	// --- 3. Build Availability Response ---
	if wcfg := cfg.Workers[bar.TaskType]; wcfg.Enabled {
		handler := bar.NewHandler(
			&bar.Config{
				Timeout:    time.Duration(wcfg.Timeout) * time.Millisecond,
				AppVersion: cfg.App.Version,
			},
			log,
		)
		startWorker(bar.TaskType, wcfg, handler.Handle)
	}

	// --- 4. Notify Availability ---
	if wcfg := cfg.Workers[na.TaskType]; wcfg.Enabled {
		handler, err := na.NewHandler(
			&na.Config{
				Timeout:      time.Duration(wcfg.Timeout) * time.Millisecond,
				AWSRegion:    cfg.Notifications.AWS.Region,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				SMSSenderID:  cfg.Notifications.SMS.DefaultSMSSenderID,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create notify-availability handler", zap.Error(err))
		}
		startWorker(na.TaskType, wcfg, handler.Handle)
	}

	// --- END: Register ALL 4 Workers ---

	zapLog.Info("All workers registered", zap.Int("count", len(activeWorkers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range activeWorkers {
		w.Stop()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
