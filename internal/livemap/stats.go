package livemap

import (
	"shiftmap-backend/internal/models"
)

// Stats are the summary counters shown above the map. Every timesheet-based
// count is over distinct booking ids, so duplicate rows never inflate a number.
type Stats struct {
	TotalShifts    int `json:"total_shifts"`
	ShiftsWithGPS  int `json:"shifts_with_gps"`
	GeofencePassed int `json:"geofence_passed"`
	GeofenceFailed int `json:"geofence_failed"`
	ClientsWithGPS int `json:"clients_with_gps"`
	ClientsTotal   int `json:"clients_total"`
	Approaching    int `json:"approaching"`
}

// Summarize computes the counters for one snapshot. A booking has GPS when any
// of its timesheets holds a valid clock-in. Its geofence verdict is taken from
// the latest timesheet that has one, so a booking counts as passed or failed
// at most once; a booking with no verdict yet counts as neither.
func (e *Engine) Summarize(in Input) Stats {
	return e.newPass(in).summarize(in)
}

func (p *pass) summarize(in Input) Stats {
	stats := Stats{
		TotalShifts:  len(in.Shifts),
		ClientsTotal: len(in.Clients),
	}

	seen := make(map[string]bool)
	for i := range in.Timesheets {
		bookingID := in.Timesheets[i].BookingID
		if bookingID == "" || seen[bookingID] {
			continue
		}
		seen[bookingID] = true

		rows := p.ix.timesheetsByBooking[bookingID]
		if anyClockIn(rows) {
			stats.ShiftsWithGPS++
		}
		if v := latestVerdict(rows); v != nil {
			if *v {
				stats.GeofencePassed++
			} else {
				stats.GeofenceFailed++
			}
		}
	}

	for i := range in.Clients {
		if IsValidLocation(in.Clients[i].LocationCoordinates) {
			stats.ClientsWithGPS++
		}
	}

	for i := range in.Shifts {
		shift := &in.Shifts[i]
		if !IsValidLocation(shift.ApproachingStaffLocation) {
			continue
		}
		if !p.hasClockIn(shift) {
			stats.Approaching++
		}
	}
	return stats
}

// hasClockIn is true if any timesheet on the shift's booking chain has a valid
// clock-in reading, not only the authoritative one.
func (p *pass) hasClockIn(shift *models.Shift) bool {
	_, cands := p.ix.candidates(shift)
	return anyClockIn(cands)
}

func anyClockIn(rows []*models.Timesheet) bool {
	for _, t := range rows {
		if IsValidLocation(t.ClockInLocation) {
			return true
		}
	}
	return false
}

// latestVerdict returns the geofence result of the newest timesheet that has
// been validated, or nil when none has.
func latestVerdict(rows []*models.Timesheet) *bool {
	var latest *models.Timesheet
	for _, t := range rows {
		if t.GeofenceValidated == nil {
			continue
		}
		if latest == nil || newer(t, latest) {
			latest = t
		}
	}
	if latest == nil {
		return nil
	}
	return latest.GeofenceValidated
}
