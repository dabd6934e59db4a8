// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleet-workers/internal/common/config"
	"fleet-workers/internal/common/database"
	"fleet-workers/internal/common/logger"

	bar "fleet-workers/internal/workers/booking/build-availability-response"
	pbw "fleet-workers/internal/workers/booking/parse-booking-window"
	rfv "fleet-workers/internal/workers/booking/resolve-free-vehicles"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	if os.Getenv("E2E_TESTS") == "" {
		fmt.Println("⚠️  E2E_TESTS not set, skipping e2e suite (needs Zeebe, PostgreSQL, Redis)")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestBookingAvailabilityE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting booking availability E2E test with real services...")

	assertServicesConnectivity(t, ctx, cfg)
	seedFleetData(t, ctx, cfg)
	deployBPMN(t)
	runBookingPipeline(t, ctx, cfg)

	t.Log("✅ Booking availability pipeline passed end to end")
}

// ==========================
// 1. Service Connectivity
// ==========================
func assertServicesConnectivity(t *testing.T, ctx context.Context, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// Force localhost for e2e runs
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(ctx), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(ctx), "❌ Redis ping failed")
	rdb.Close()
	t.Log("✅ Redis connected")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Fleet Schema + Test Data
// ==========================
func seedFleetData(t *testing.T, ctx context.Context, cfg *config.Config) {
	t.Log("🔧 Creating fleet tables and inserting test data...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS job_positions (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comfort_categories (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_comfort_categories (
			job_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			PRIMARY KEY (job_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT,
			phone TEXT,
			job_id BIGINT,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id BIGSERIAL PRIMARY KEY,
			model TEXT,
			category_id BIGINT NOT NULL,
			driver_id BIGINT,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS schedule (
			id BIGSERIAL PRIMARY KEY,
			car_id BIGINT NOT NULL,
			driver_id BIGINT,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(ctx, query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	testData := []string{
		`INSERT INTO job_positions (id, title) VALUES (901, 'E2E Manager')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO comfort_categories (id, name) VALUES (910, 'E2E Economy'), (920, 'E2E Comfort')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO job_comfort_categories (job_id, category_id) VALUES (901, 910), (901, 920)
		 ON CONFLICT DO NOTHING`,
		`INSERT INTO users (id, first_name, last_name, email, phone, job_id, active)
		 VALUES (9001, 'E2E', 'Requester', 'e2e@example.com', '+79990009001', 901, TRUE)
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO users (id, first_name, last_name, email, phone, job_id, active)
		 VALUES (9003, 'E2E', 'Driver', NULL, NULL, NULL, TRUE)
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO vehicles (id, model, category_id, driver_id, active)
		 VALUES (9101, 'E2E Camry', 910, 9003, TRUE), (9102, 'E2E Octavia', 920, NULL, TRUE)
		 ON CONFLICT (id) DO NOTHING`,
		// Block vehicle 9102 for the test window.
		`INSERT INTO schedule (car_id, driver_id, start_time, end_time)
		 SELECT 9102, NULL, '2030-05-01T08:00:00Z', '2030-05-01T10:00:00Z'
		 WHERE NOT EXISTS (SELECT 1 FROM schedule WHERE car_id = 9102)`,
	}

	for _, query := range testData {
		_, err := db.ExecContext(ctx, query)
		if err != nil {
			t.Logf("Warning: Failed to insert test data: %v", err)
		}
	}

	t.Log("✅ Fleet tables created/verified with test data")
}

// ==========================
// 3. Deploy BPMN Files
// ==========================
func deployBPMN(t *testing.T) {
	t.Log("🏗️ Deploying BPMN files...")

	possiblePaths := []string{"bpmn", "../bpmn", "../../bpmn"}

	var bpmnDir string
	var files []os.DirEntry
	for _, path := range possiblePaths {
		if entries, err := os.ReadDir(path); err == nil {
			bpmnDir = path
			files = entries
			break
		}
	}

	if bpmnDir == "" {
		t.Log("⚠️ BPMN directory not found, skipping deployment")
		return
	}

	deployed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".bpmn") {
			continue
		}
		path := fmt.Sprintf("%s/%s", bpmnDir, f.Name())
		_, err := zeebeClient.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background())
		if err != nil {
			t.Logf("⚠️ Failed to deploy BPMN %s: %v", f.Name(), err)
		} else {
			t.Logf("✅ Deployed: %s", f.Name())
			deployed++
		}
	}
	t.Logf("✅ Deployed %d BPMN files", deployed)
}

// ==========================
// 4. Booking Pipeline
// ==========================
func runBookingPipeline(t *testing.T, ctx context.Context, cfg *config.Config) {
	t.Log("🧪 Running the booking pipeline against real stores...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	log := logger.NewZapAdapter(zapLog)

	// --- parse-booking-window ---
	parseHandler, err := pbw.NewHandler(&pbw.Config{Timeout: 10 * time.Second}, log)
	require.NoError(t, err)

	parseInput := &pbw.Input{
		UserID:    9001,
		StartTime: "2030-05-01 09:00:00",
		EndTime:   "2030-05-01 12:00:00",
	}
	rawVariables := mustJSON(t, parseInput)

	parsed, err := parseHandler.Execute(ctx, rawVariables, parseInput)
	require.NoError(t, err)
	assert.Equal(t, "2030-05-01T09:00:00Z", parsed.StartTime)
	assert.Equal(t, int64(180), parsed.DurationMinutes)
	t.Log("✅ parse-booking-window")

	// --- resolve-free-vehicles ---
	resolveHandler := rfv.NewHandler(
		&rfv.Config{
			Timeout:           30 * time.Second,
			RoleCategoriesTTL: time.Minute,
			DriverNameTTL:     time.Minute,
		},
		dbClient.GetDB(), rdbClient.GetClient(), log,
	)

	resolved, err := resolveHandler.Execute(ctx, &rfv.Input{
		UserID:    parsed.UserID,
		StartTime: parsed.StartTime,
		EndTime:   parsed.EndTime,
	})
	require.NoError(t, err)
	require.Equal(t, 1, resolved.Count, "9102 is reserved, only 9101 should be free")
	assert.Equal(t, "E2E Camry", resolved.FreeVehicles[0].Name)
	assert.Equal(t, int64(910), resolved.FreeVehicles[0].CategoryID)
	assert.Equal(t, "E2E Driver", resolved.FreeVehicles[0].Driver)
	t.Log("✅ resolve-free-vehicles")

	// --- build-availability-response ---
	buildHandler := bar.NewHandler(&bar.Config{Timeout: 10 * time.Second, AppVersion: "e2e"}, log)

	response, err := buildHandler.Execute(ctx, &bar.Input{
		RequestID:    "e2e-req-1",
		FreeVehicles: resolved.FreeVehicles,
		Count:        resolved.Count,
	})
	require.NoError(t, err)
	assert.Equal(t, bar.StatusSuccess, response.Response.Status)
	require.NotNil(t, response.Response.Data)
	assert.Equal(t, 1, response.Response.Data.Count)
	t.Log("✅ build-availability-response")

	// notify-availability needs live AWS credentials, covered by its unit tests.
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
