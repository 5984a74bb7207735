package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a Postgres connection and verifies it with a ping.
// The returned handle is shared by all stores; callers own its lifecycle.
func Connect(dbURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ Database connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Database ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('worker', 'manager')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create shifts table. Location samples are stored as JSONB blobs;
		// they are immutable once attached.
		`CREATE TABLE IF NOT EXISTS shifts (
			id TEXT PRIMARY KEY,
			worker_id TEXT NOT NULL,
			worker_name TEXT NOT NULL DEFAULT '',
			worker_email TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK(status IN ('active', 'completed')),
			start_time BIGINT NOT NULL,
			end_time BIGINT,
			duration_minutes INT,
			start_location JSONB,
			end_location JSONB,
			notes TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (worker_id) REFERENCES users(id) ON DELETE CASCADE,
			CHECK (duration_minutes IS NULL OR duration_minutes >= 0)
		)`,

		// One open shift per worker, enforced at the database level so two
		// concurrent startShift calls can never both succeed
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_active
			ON shifts(worker_id) WHERE end_time IS NULL`,

		// Create breaks table (explicit association, not embedded in shifts)
		`CREATE TABLE IF NOT EXISTS breaks (
			id SERIAL PRIMARY KEY,
			shift_id TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('break', 'lunch')),
			start_time BIGINT NOT NULL,
			end_time BIGINT,
			duration_minutes INT,
			start_location JSONB,
			end_location JSONB,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (shift_id) REFERENCES shifts(id) ON DELETE CASCADE,
			CHECK (duration_minutes IS NULL OR duration_minutes >= 0)
		)`,

		// One open break per shift
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_breaks_one_open
			ON breaks(shift_id) WHERE end_time IS NULL`,

		// Create activity_log table: append-only audit trail.
		// Rows are never updated or deleted.
		`CREATE TABLE IF NOT EXISTS activity_log (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			user_name TEXT,
			user_role TEXT,
			action TEXT NOT NULL,
			category TEXT NOT NULL CHECK(category IN ('authentication', 'shift', 'break', 'incident', 'system')),
			details JSONB NOT NULL DEFAULT '{}',
			ip_address TEXT,
			device_type TEXT,
			location JSONB,
			timestamp BIGINT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_log_timestamp
			ON activity_log(timestamp DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_log_category
			ON activity_log(category)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_log_user
			ON activity_log(user_id)`,

		`CREATE INDEX IF NOT EXISTS idx_shifts_worker_start
			ON shifts(worker_id, start_time DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("✅ Database migrations completed")
	return nil
}
