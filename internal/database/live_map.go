package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"shiftmap-backend/internal/models"
)

// An empty agencyID matches every agency.

const shiftColumns = `id, agency_id, to_char(date, 'YYYY-MM-DD') AS date, start_time, end_time,
	status, client_id, assigned_staff_id, booking_id, approaching_staff_location`

// Location columns are scanned as raw JSON so a stored JSON null reads as an
// absent location rather than an empty one. Each outer field shadows the
// embedded model column with the same db name.
type shiftRow struct {
	models.Shift
	ApproachingRaw []byte `db:"approaching_staff_location"`
}

type clientRow struct {
	models.Client
	CoordinatesRaw []byte `db:"location_coordinates"`
}

type timesheetRow struct {
	models.Timesheet
	ClockInRaw []byte `db:"clock_in_location"`
}

func (r *shiftRow) model() models.Shift {
	s := r.Shift
	s.ApproachingStaffLocation = models.ParseLocation(r.ApproachingRaw)
	return s
}

func shiftsFromRows(rows []shiftRow) []models.Shift {
	shifts := make([]models.Shift, len(rows))
	for i := range rows {
		shifts[i] = rows[i].model()
	}
	return shifts
}

// ListActiveShifts returns the day's shifts that belong on the live map
func ListActiveShifts(ctx context.Context, db *sqlx.DB, agencyID, date string) ([]models.Shift, error) {
	statuses := make([]string, len(models.LiveMapStatuses))
	for i, s := range models.LiveMapStatuses {
		statuses[i] = string(s)
	}

	query := `SELECT ` + shiftColumns + `
		FROM shifts
		WHERE date = $1
		  AND status = ANY($2)
		  AND ($3::text = '' OR agency_id = $3)
		ORDER BY start_time ASC, id ASC`

	var rows []shiftRow
	if err := db.SelectContext(ctx, &rows, query, date, pq.Array(statuses), agencyID); err != nil {
		return nil, fmt.Errorf("failed to list active shifts: %w", err)
	}
	return shiftsFromRows(rows), nil
}

// ListClients returns the agency's client sites
func ListClients(ctx context.Context, db *sqlx.DB, agencyID string) ([]models.Client, error) {
	query := `SELECT id, agency_id, name, location_coordinates, geofence_radius_meters
		FROM clients
		WHERE ($1::text = '' OR agency_id = $1)
		ORDER BY name ASC, id ASC`

	var rows []clientRow
	if err := db.SelectContext(ctx, &rows, query, agencyID); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	clients := make([]models.Client, len(rows))
	for i := range rows {
		clients[i] = rows[i].Client
		clients[i].LocationCoordinates = models.ParseLocation(rows[i].CoordinatesRaw)
	}
	return clients, nil
}

// ListStaff returns the agency's staff
func ListStaff(ctx context.Context, db *sqlx.DB, agencyID string) ([]models.Staff, error) {
	query := `SELECT id, agency_id, first_name, last_name
		FROM staff
		WHERE ($1::text = '' OR agency_id = $1)
		ORDER BY id ASC`

	staff := []models.Staff{}
	if err := db.SelectContext(ctx, &staff, query, agencyID); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// ListBookingsForDate returns bookings for the given shift date
func ListBookingsForDate(ctx context.Context, db *sqlx.DB, agencyID, date string) ([]models.Booking, error) {
	query := `SELECT id, agency_id, shift_id, client_id, staff_id, to_char(shift_date, 'YYYY-MM-DD') AS shift_date
		FROM bookings
		WHERE shift_date = $1
		  AND ($2::text = '' OR agency_id = $2)
		ORDER BY id ASC`

	bookings := []models.Booking{}
	if err := db.SelectContext(ctx, &bookings, query, date, agencyID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListTimesheetsForDate returns every timesheet row for the date, duplicates included
func ListTimesheetsForDate(ctx context.Context, db *sqlx.DB, agencyID, date string) ([]models.Timesheet, error) {
	query := `SELECT id, agency_id, booking_id, shift_id, staff_id, to_char(shift_date, 'YYYY-MM-DD') AS shift_date,
			clock_in_location, geofence_validated, geofence_distance_meters, status, created_date
		FROM timesheets
		WHERE shift_date = $1
		  AND ($2::text = '' OR agency_id = $2)
		ORDER BY created_date ASC, id ASC`

	var rows []timesheetRow
	if err := db.SelectContext(ctx, &rows, query, date, agencyID); err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	timesheets := make([]models.Timesheet, len(rows))
	for i := range rows {
		timesheets[i] = rows[i].Timesheet
		timesheets[i].ClockInLocation = models.ParseLocation(rows[i].ClockInRaw)
	}
	return timesheets, nil
}

// ListAgenciesWithShifts returns agencies that have live shifts on the date
func ListAgenciesWithShifts(ctx context.Context, db *sqlx.DB, date string) ([]string, error) {
	statuses := make([]string, len(models.LiveMapStatuses))
	for i, s := range models.LiveMapStatuses {
		statuses[i] = string(s)
	}

	agencies := []string{}
	query := `SELECT DISTINCT agency_id FROM shifts WHERE date = $1 AND status = ANY($2) ORDER BY agency_id`
	if err := db.SelectContext(ctx, &agencies, query, date, pq.Array(statuses)); err != nil {
		return nil, fmt.Errorf("failed to list agencies: %w", err)
	}
	return agencies, nil
}

// GetShiftForStaff loads a shift only if it is assigned to the staff member
func GetShiftForStaff(ctx context.Context, db *sqlx.DB, shiftID, staffID string) (*models.Shift, error) {
	var row shiftRow
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1 AND assigned_staff_id = $2`
	if err := db.GetContext(ctx, &row, query, shiftID, staffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	shift := row.model()
	return &shift, nil
}

// SetApproachingLocation stores the live location a staff member shared on the way to site
func SetApproachingLocation(ctx context.Context, db *sqlx.DB, shiftID string, loc *models.Location) error {
	return updateApproaching(ctx, db, shiftID, loc)
}

// ClearApproachingLocation removes a shared live location
func ClearApproachingLocation(ctx context.Context, db *sqlx.DB, shiftID string) error {
	return updateApproaching(ctx, db, shiftID, nil)
}

func updateApproaching(ctx context.Context, db *sqlx.DB, shiftID string, loc *models.Location) error {
	var value interface{}
	if loc != nil {
		v, err := loc.Value()
		if err != nil {
			return fmt.Errorf("failed to encode location: %w", err)
		}
		value = v
	}

	res, err := db.ExecContext(ctx, `UPDATE shifts SET approaching_staff_location = $2 WHERE id = $1`, shiftID, value)
	if err != nil {
		return fmt.Errorf("failed to update approaching location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update approaching location: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
