package database

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert hits a unique constraint
var ErrDuplicate = errors.New("record already exists")

func Connect(dbURL string) (*sqlx.DB, error) {
	log := zap.L().Named("database")
	log.Info("connecting to database", zap.Int("url_length", len(dbURL)))

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Error("sqlx.Connect failed", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("database ping failed", zap.Error(err))
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Users who can sign in (managers view the map, staff share their location)
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin', 'manager', 'staff')),
			agency_id TEXT,
			staff_id TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android', 'web')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Client sites. location_coordinates is JSONB and may hold {} placeholders.
		`CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL,
			name TEXT NOT NULL,
			location_coordinates JSONB,
			geofence_radius_meters INT
		)`,

		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS shifts (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL,
			date DATE NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('open', 'assigned', 'confirmed', 'in_progress', 'completed', 'cancelled', 'no_show')),
			client_id TEXT NOT NULL,
			assigned_staff_id TEXT,
			booking_id TEXT,
			approaching_staff_location JSONB
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL,
			shift_id TEXT NOT NULL,
			client_id TEXT NOT NULL,
			staff_id TEXT NOT NULL,
			shift_date DATE NOT NULL
		)`,

		// No unique constraint on booking_id: duplicate rows are tolerated by the live map
		`CREATE TABLE IF NOT EXISTS timesheets (
			id TEXT PRIMARY KEY,
			agency_id TEXT NOT NULL,
			booking_id TEXT NOT NULL,
			shift_id TEXT,
			staff_id TEXT NOT NULL,
			shift_date DATE NOT NULL,
			clock_in_location JSONB,
			geofence_validated BOOLEAN,
			geofence_distance_meters DOUBLE PRECISION,
			status TEXT NOT NULL DEFAULT 'draft',
			created_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_agency_id ON clients(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_staff_agency_id ON staff(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_date_status ON shifts(date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_agency_id ON shifts(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_shift_date ON bookings(shift_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_shift_id ON bookings(shift_id)`,
		`CREATE INDEX IF NOT EXISTS idx_timesheets_shift_date ON timesheets(shift_date)`,
		`CREATE INDEX IF NOT EXISTS idx_timesheets_booking_id ON timesheets(booking_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	zap.L().Named("database").Info("database migrations completed", zap.Int("statements", len(migrations)))
	return nil
}
