// cmd/tools/fleet-seeder/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"fleet-workers/internal/common/config"
	"fleet-workers/internal/common/database"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS job_positions (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comfort_categories (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS job_comfort_categories (
		job_id BIGINT NOT NULL REFERENCES job_positions(id),
		category_id BIGINT NOT NULL REFERENCES comfort_categories(id),
		PRIMARY KEY (job_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT,
		phone TEXT,
		job_id BIGINT REFERENCES job_positions(id),
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		model TEXT,
		category_id BIGINT NOT NULL REFERENCES comfort_categories(id),
		driver_id BIGINT REFERENCES users(id),
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS schedule (
		id BIGSERIAL PRIMARY KEY,
		car_id BIGINT NOT NULL REFERENCES vehicles(id),
		driver_id BIGINT REFERENCES users(id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_window ON schedule (start_time, end_time)`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_category ON vehicles (category_id) WHERE active`,
}

var dropStatements = []string{
	`DROP TABLE IF EXISTS schedule`,
	`DROP TABLE IF EXISTS vehicles`,
	`DROP TABLE IF EXISTS users`,
	`DROP TABLE IF EXISTS job_comfort_categories`,
	`DROP TABLE IF EXISTS comfort_categories`,
	`DROP TABLE IF EXISTS job_positions`,
}

func main() {
	drop := flag.Bool("drop", false, "Drop existing fleet tables before creating them")
	sample := flag.Bool("sample", false, "Insert sample fleet data after creating the schema")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall operation timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *drop {
		if err := execAll(ctx, pg.DB, dropStatements); err != nil {
			fmt.Printf("Error dropping tables: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Dropped existing fleet tables.")
	}

	if err := execAll(ctx, pg.DB, schemaStatements); err != nil {
		fmt.Printf("Error creating schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Fleet schema created.")

	if *sample {
		if err := seedSampleData(ctx, pg.DB); err != nil {
			fmt.Printf("Error seeding sample data: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Sample fleet data inserted.")
	}
}

func execAll(ctx context.Context, db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// seedSampleData populates a small fleet: two job positions with different
// comfort category permissions, a handful of vehicles (one without a fixed
// driver), and reservations that block part of the fleet for tomorrow morning.
func seedSampleData(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`INSERT INTO job_positions (id, title) VALUES
			(1, 'Regional Manager'),
			(2, 'Sales Representative')
		ON CONFLICT (id) DO NOTHING`,
		`SELECT setval('job_positions_id_seq', (SELECT MAX(id) FROM job_positions))`,

		`INSERT INTO comfort_categories (id, name) VALUES
			(10, 'Economy'),
			(20, 'Comfort'),
			(30, 'Business')
		ON CONFLICT (id) DO NOTHING`,

		`INSERT INTO job_comfort_categories (job_id, category_id) VALUES
			(1, 20), (1, 30),
			(2, 10), (2, 20)
		ON CONFLICT DO NOTHING`,

		`INSERT INTO users (id, first_name, last_name, email, phone, job_id, active) VALUES
			(1, 'Anna', 'Petrova', 'a.petrova@example.com', '+79990000001', 1, TRUE),
			(2, 'Boris', 'Ivanov', 'b.ivanov@example.com', '+79990000002', 2, TRUE),
			(3, 'Viktor', 'Sidorov', 'v.sidorov@example.com', NULL, NULL, TRUE),
			(4, 'Galina', 'Smirnova', NULL, '+79990000004', 2, FALSE),
			(5, 'Dmitry', 'Orlov', 'd.orlov@example.com', NULL, NULL, TRUE)
		ON CONFLICT (id) DO NOTHING`,
		`SELECT setval('users_id_seq', (SELECT MAX(id) FROM users))`,

		`INSERT INTO vehicles (id, model, category_id, driver_id, active) VALUES
			(101, 'Toyota Camry', 20, 3, TRUE),
			(102, 'Kia Rio', 10, 5, TRUE),
			(103, 'Mercedes E-Class', 30, 3, TRUE),
			(104, 'Skoda Octavia', 20, NULL, TRUE),
			(105, 'Lada Vesta', 10, NULL, FALSE)
		ON CONFLICT (id) DO NOTHING`,
		`SELECT setval('vehicles_id_seq', (SELECT MAX(id) FROM vehicles))`,

		`INSERT INTO schedule (car_id, driver_id, start_time, end_time) VALUES
			(101, 3, NOW() + INTERVAL '1 day' + INTERVAL '9 hours', NOW() + INTERVAL '1 day' + INTERVAL '12 hours'),
			(104, NULL, NOW() + INTERVAL '1 day' + INTERVAL '10 hours', NOW() + INTERVAL '1 day' + INTERVAL '11 hours')`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	return tx.Commit()
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
