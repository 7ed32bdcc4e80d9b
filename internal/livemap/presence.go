package livemap

import (
	"go.uber.org/zap"

	"shiftmap-backend/internal/models"
)

// TrackingState is where a staff member is relative to their shift's site
type TrackingState string

const (
	TrackingNone      TrackingState = "none"
	TrackingEnRoute   TrackingState = "en_route"
	TrackingClockedIn TrackingState = "clocked_in"
)

// PresenceMarker is a staff pin on the map. En-route markers carry the shared
// live location; clocked-in markers carry the timesheet's clock-in reading.
type PresenceMarker struct {
	Mode        TrackingState `json:"mode"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Accuracy    *float64      `json:"accuracy,omitempty"`
	StaffMember *models.Staff `json:"staff_member"`
	ShiftID     string        `json:"shift_id"`

	// En route
	DistanceFromSite *float64 `json:"distance_from_site,omitempty"`
	RecordedAt       *string  `json:"recorded_at,omitempty"`

	// Clocked in
	TimesheetID       string   `json:"timesheet_id,omitempty"`
	GeofenceValidated *bool    `json:"geofence_validated,omitempty"`
	Distance          *float64 `json:"distance,omitempty"`
}

// staffID is the staff half of the clocked-in dedup key
func (m *PresenceMarker) staffID() string {
	if m.StaffMember == nil {
		return ""
	}
	return m.StaffMember.ID
}

// Presence holds at most one of the two markers for a shift
type Presence struct {
	EnRoute   *PresenceMarker
	ClockedIn *PresenceMarker
}

// State collapses the markers into a single tracking state
func (p Presence) State() TrackingState {
	switch {
	case p.ClockedIn != nil:
		return TrackingClockedIn
	case p.EnRoute != nil:
		return TrackingEnRoute
	}
	return TrackingNone
}

// Classify derives the presence markers for a shift given its resolved
// timesheet (which may be nil). A valid clock-in suppresses the en-route marker.
func (e *Engine) Classify(shift *models.Shift, timesheet *models.Timesheet) Presence {
	return e.newPass(Input{}).classify(shift, timesheet)
}

func (p *pass) classify(shift *models.Shift, timesheet *models.Timesheet) Presence {
	var out Presence

	if timesheet != nil {
		loc := timesheet.ClockInLocation
		if IsValidLocation(loc) {
			out.ClockedIn = &PresenceMarker{
				Mode:              TrackingClockedIn,
				Latitude:          *loc.Latitude,
				Longitude:         *loc.Longitude,
				Accuracy:          loc.Accuracy,
				ShiftID:           shift.ID,
				TimesheetID:       timesheet.ID,
				GeofenceValidated: timesheet.GeofenceValidated,
				Distance:          timesheet.GeofenceDistanceMeters,
			}
		} else if isMalformed(loc) {
			p.log.Warn("ignoring malformed clock-in location",
				zap.String("timesheet_id", timesheet.ID),
				zap.String("shift_id", shift.ID),
			)
		}
	}

	loc := shift.ApproachingStaffLocation
	if isMalformed(loc) {
		p.log.Warn("ignoring malformed approaching location", zap.String("shift_id", shift.ID))
		return out
	}
	if IsValidLocation(loc) && out.ClockedIn == nil {
		out.EnRoute = &PresenceMarker{
			Mode:             TrackingEnRoute,
			Latitude:         *loc.Latitude,
			Longitude:        *loc.Longitude,
			Accuracy:         loc.Accuracy,
			ShiftID:          shift.ID,
			DistanceFromSite: loc.DistanceFromSite,
			RecordedAt:       loc.RecordedAt,
		}
	}
	return out
}
