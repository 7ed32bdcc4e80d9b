package models

// ShiftStatus represents the current status of a shift
type ShiftStatus string

const (
	ShiftStatusOpen       ShiftStatus = "open"        // Not yet filled
	ShiftStatusAssigned   ShiftStatus = "assigned"    // Staff assigned, awaiting confirmation
	ShiftStatusConfirmed  ShiftStatus = "confirmed"   // Staff confirmed attendance
	ShiftStatusInProgress ShiftStatus = "in_progress" // Staff on site
	ShiftStatusCompleted  ShiftStatus = "completed"
	ShiftStatusCancelled  ShiftStatus = "cancelled"
	ShiftStatusNoShow     ShiftStatus = "no_show"
)

// LiveMapStatuses are the statuses that put a shift on the live operations map
var LiveMapStatuses = []ShiftStatus{
	ShiftStatusAssigned,
	ShiftStatusConfirmed,
	ShiftStatusInProgress,
}

// Shift is a single care visit at a client site
type Shift struct {
	ID              string      `json:"id" db:"id"`
	AgencyID        string      `json:"agency_id" db:"agency_id"`
	Date            string      `json:"date" db:"date"` // YYYY-MM-DD
	StartTime       string      `json:"start_time" db:"start_time"`
	EndTime         string      `json:"end_time" db:"end_time"`
	Status          ShiftStatus `json:"status" db:"status"`
	ClientID        string      `json:"client_id" db:"client_id"`
	AssignedStaffID *string     `json:"assigned_staff_id" db:"assigned_staff_id"`
	BookingID       *string     `json:"booking_id" db:"booking_id"`

	// Live location shared by the assigned staff member while travelling to site
	ApproachingStaffLocation *Location `json:"approaching_staff_location" db:"approaching_staff_location"`
}

// Booking links a staff member to a specific shift occurrence
type Booking struct {
	ID        string `json:"id" db:"id"`
	AgencyID  string `json:"agency_id" db:"agency_id"`
	ShiftID   string `json:"shift_id" db:"shift_id"`
	ClientID  string `json:"client_id" db:"client_id"`
	StaffID   string `json:"staff_id" db:"staff_id"`
	ShiftDate string `json:"shift_date" db:"shift_date"`
}
