package livemap

import (
	"go.uber.org/zap"

	"shiftmap-backend/internal/models"
)

// SiteView is one client site on the map with everything happening there today
type SiteView struct {
	Client               *models.Client   `json:"client"`
	GeofenceRadiusMeters int              `json:"geofence_radius_meters"`
	Shifts               []ShiftView      `json:"shifts"`
	ApproachingStaff     []PresenceMarker `json:"approaching_staff"`
	ClockedInStaff       []PresenceMarker `json:"clocked_in_staff"`
}

// ShiftView is a shift with its staff member and authoritative timesheet resolved
type ShiftView struct {
	Shift             *models.Shift     `json:"shift"`
	AssignedStaff     *models.Staff     `json:"assigned_staff"`
	Timesheet         *models.Timesheet `json:"timesheet"`
	HasGPS            bool              `json:"has_gps"`
	GeofenceValidated *bool             `json:"geofence_validated"`
	Distance          *float64          `json:"distance"`
	Approaching       bool              `json:"approaching"`
	State             TrackingState     `json:"state"`
}

// Aggregate groups the shifts by site in first-seen order. Shifts whose client
// is unknown or has no usable coordinates are left off the map.
func (e *Engine) Aggregate(in Input) []SiteView {
	return e.newPass(in).aggregate(in.Shifts)
}

func (p *pass) aggregate(shifts []models.Shift) []SiteView {
	sites := []SiteView{}
	positions := make(map[string]int)

	for i := range shifts {
		shift := &shifts[i]

		client, ok := p.ix.clients[shift.ClientID]
		if !ok {
			continue
		}
		if !IsValidLocation(client.LocationCoordinates) {
			if isMalformed(client.LocationCoordinates) && !p.warnedClients[client.ID] {
				p.warnedClients[client.ID] = true
				p.log.Warn("client has malformed coordinates, leaving it off the map",
					zap.String("client_id", client.ID),
				)
			}
			continue
		}

		pos, ok := positions[client.ID]
		if !ok {
			pos = len(sites)
			positions[client.ID] = pos
			sites = append(sites, SiteView{
				Client:               client,
				GeofenceRadiusMeters: client.GeofenceRadius(),
				Shifts:               []ShiftView{},
				ApproachingStaff:     []PresenceMarker{},
				ClockedInStaff:       []PresenceMarker{},
			})
		}
		site := &sites[pos]

		staff := p.ix.staffFor(shift)
		timesheet := p.resolve(shift)
		presence := p.classify(shift, timesheet)

		view := ShiftView{
			Shift:         shift,
			AssignedStaff: staff,
			Timesheet:     timesheet,
			HasGPS:        presence.ClockedIn != nil,
			Approaching:   IsValidLocation(shift.ApproachingStaffLocation),
			State:         presence.State(),
		}
		if timesheet != nil {
			view.GeofenceValidated = timesheet.GeofenceValidated
			view.Distance = timesheet.GeofenceDistanceMeters
		}
		site.Shifts = append(site.Shifts, view)

		if m := presence.EnRoute; m != nil {
			m.StaffMember = staff
			if !hasShiftMarker(site.ApproachingStaff, shift.ID) {
				site.ApproachingStaff = append(site.ApproachingStaff, *m)
			}
		}
		if m := presence.ClockedIn; m != nil {
			m.StaffMember = staff
			if !hasClockInMarker(site.ClockedInStaff, m.staffID(), m.TimesheetID) {
				site.ClockedInStaff = append(site.ClockedInStaff, *m)
			}
		}
	}
	return sites
}

func hasShiftMarker(markers []PresenceMarker, shiftID string) bool {
	for i := range markers {
		if markers[i].ShiftID == shiftID {
			return true
		}
	}
	return false
}

func hasClockInMarker(markers []PresenceMarker, staffID, timesheetID string) bool {
	for i := range markers {
		if markers[i].staffID() == staffID && markers[i].TimesheetID == timesheetID {
			return true
		}
	}
	return false
}
