package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DemoAgencyID owns the seeded demo data
const DemoAgencyID = "demo-agency"

func SeedUsers(db *sqlx.DB) error {
	log := zap.L().Named("seed")

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}
	if count > 0 {
		log.Info("users already seeded, skipping")
		return nil
	}

	managerPassword, err := bcrypt.GenerateFromPassword([]byte("manager123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	staffPassword, err := bcrypt.GenerateFromPassword([]byte("staff123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":        uuid.New().String(),
			"email":     "manager@shiftmap.dev",
			"password":  string(managerPassword),
			"name":      "Operations Manager",
			"role":      "manager",
			"agency_id": DemoAgencyID,
			"staff_id":  nil,
		},
		{
			"id":        uuid.New().String(),
			"email":     "carer@shiftmap.dev",
			"password":  string(staffPassword),
			"name":      "Amara Okafor",
			"role":      "staff",
			"agency_id": DemoAgencyID,
			"staff_id":  "demo-staff-1",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role, agency_id, staff_id)
			VALUES (:id, :email, :password, :name, :role, :agency_id, :staff_id)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Info("created user", zap.Any("email", user["email"]), zap.Any("role", user["role"]))
	}
	return nil
}

type seedStatement struct {
	query string
	args  []interface{}
}

// SeedDemo writes a demo day for the live map: one site with duplicated
// timesheets, one site with a {} placeholder location and a carer en route.
func SeedDemo(db *sqlx.DB, date time.Time) error {
	log := zap.L().Named("seed")
	day := date.Format("2006-01-02")

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM shifts WHERE agency_id = $1 AND date = $2", DemoAgencyID, day); err != nil {
		return err
	}
	if count > 0 {
		log.Info("demo day already seeded, skipping", zap.String("date", day))
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []seedStatement{
		{`INSERT INTO clients (id, agency_id, name, location_coordinates, geofence_radius_meters) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			[]interface{}{"demo-client-1", DemoAgencyID, "Rosewood House", `{"latitude": 54.5742, "longitude": -1.2350}`, 100}},
		{`INSERT INTO clients (id, agency_id, name, location_coordinates, geofence_radius_meters) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			[]interface{}{"demo-client-2", DemoAgencyID, "Elm Court", `{}`, nil}},
		{`INSERT INTO clients (id, agency_id, name, location_coordinates, geofence_radius_meters) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			[]interface{}{"demo-client-3", DemoAgencyID, "Harbour View", `{"latitude": 54.5901, "longitude": -1.1903}`, 150}},

		{`INSERT INTO staff (id, agency_id, first_name, last_name) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			[]interface{}{"demo-staff-1", DemoAgencyID, "Amara", "Okafor"}},
		{`INSERT INTO staff (id, agency_id, first_name, last_name) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			[]interface{}{"demo-staff-2", DemoAgencyID, "Tom", "Whitfield"}},
		{`INSERT INTO staff (id, agency_id, first_name, last_name) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			[]interface{}{"demo-staff-3", DemoAgencyID, "Priya", "Natarajan"}},
	}

	shift1, shift2, shift3 := uuid.New().String(), uuid.New().String(), uuid.New().String()
	booking1, booking2, booking3 := uuid.New().String(), uuid.New().String(), uuid.New().String()

	statements = append(statements,
		seedStatement{`INSERT INTO shifts (id, agency_id, date, start_time, end_time, status, client_id, assigned_staff_id, booking_id)
			VALUES ($1, $2, $3, '08:00', '14:00', 'in_progress', 'demo-client-1', 'demo-staff-1', $4)`,
			[]interface{}{shift1, DemoAgencyID, day, booking1}},
		seedStatement{`INSERT INTO shifts (id, agency_id, date, start_time, end_time, status, client_id, assigned_staff_id)
			VALUES ($1, $2, $3, '09:00', '17:00', 'confirmed', 'demo-client-2', 'demo-staff-2')`,
			[]interface{}{shift2, DemoAgencyID, day}},
		seedStatement{`INSERT INTO shifts (id, agency_id, date, start_time, end_time, status, client_id, assigned_staff_id, approaching_staff_location)
			VALUES ($1, $2, $3, '10:00', '16:00', 'confirmed', 'demo-client-3', 'demo-staff-3', $4)`,
			[]interface{}{shift3, DemoAgencyID, day, fmt.Sprintf(
				`{"staff_id": "demo-staff-3", "latitude": 54.5870, "longitude": -1.1950, "distance_from_site": 420, "recorded_at": %q}`,
				date.UTC().Format(time.RFC3339))}},
	)

	for _, b := range []struct{ id, shift, client, staff string }{
		{booking1, shift1, "demo-client-1", "demo-staff-1"},
		{booking2, shift2, "demo-client-2", "demo-staff-2"},
		{booking3, shift3, "demo-client-3", "demo-staff-3"},
	} {
		statements = append(statements, seedStatement{`INSERT INTO bookings (id, agency_id, shift_id, client_id, staff_id, shift_date) VALUES ($1, $2, $3, $4, $5, $6)`,
			[]interface{}{b.id, DemoAgencyID, b.shift, b.client, b.staff, day}})
	}

	// Two timesheets for the same booking: the double-submit the live map has to tolerate
	created := date.UTC().Truncate(time.Minute)
	statements = append(statements,
		seedStatement{`INSERT INTO timesheets (id, agency_id, booking_id, shift_id, staff_id, shift_date, status, created_date)
			VALUES ($1, $2, $3, $4, 'demo-staff-1', $5, 'draft', $6)`,
			[]interface{}{uuid.New().String(), DemoAgencyID, booking1, shift1, day, created}},
		seedStatement{`INSERT INTO timesheets (id, agency_id, booking_id, shift_id, staff_id, shift_date, clock_in_location,
				geofence_validated, geofence_distance_meters, status, created_date)
			VALUES ($1, $2, $3, $4, 'demo-staff-1', $5, $6, TRUE, 18, 'draft', $7)`,
			[]interface{}{uuid.New().String(), DemoAgencyID, booking1, shift1, day,
				`{"latitude": 54.5743, "longitude": -1.2351, "accuracy": 12}`, created.Add(5 * time.Minute)}},
	)

	for _, st := range statements {
		if _, err := tx.Exec(st.query, st.args...); err != nil {
			return fmt.Errorf("failed to seed demo day: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("seeded demo day", zap.String("agency_id", DemoAgencyID), zap.String("date", day))
	return nil
}
