package models

import "time"

// Timesheet is a staff member's record of attendance for a booking.
// Upstream write races can leave more than one row per booking.
type Timesheet struct {
	ID                     string    `json:"id" db:"id"`
	AgencyID               string    `json:"agency_id" db:"agency_id"`
	BookingID              string    `json:"booking_id" db:"booking_id"`
	ShiftID                *string   `json:"shift_id" db:"shift_id"`
	StaffID                string    `json:"staff_id" db:"staff_id"`
	ShiftDate              string    `json:"shift_date" db:"shift_date"`
	ClockInLocation        *Location `json:"clock_in_location" db:"clock_in_location"`
	GeofenceValidated      *bool     `json:"geofence_validated" db:"geofence_validated"` // nil until validated upstream
	GeofenceDistanceMeters *float64  `json:"geofence_distance_meters" db:"geofence_distance_meters"`
	Status                 string    `json:"status" db:"status"`
	CreatedDate            time.Time `json:"created_date" db:"created_date"`
}
