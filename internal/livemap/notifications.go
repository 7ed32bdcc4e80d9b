package livemap

import "fmt"

// NotificationGeofenceViolation is raised for a clock-in outside the site geofence
const NotificationGeofenceViolation = "geofence_violation"

// Notification is an alert derived from the site views
type Notification struct {
	Type        string   `json:"type"`
	ClientID    string   `json:"client_id"`
	ClientName  string   `json:"client"`
	StaffID     string   `json:"staff_id,omitempty"`
	StaffName   string   `json:"staff"`
	Distance    *float64 `json:"distance"`
	ShiftID     string   `json:"shift_id"`
	TimesheetID string   `json:"timesheet_id"`
}

// Message renders the alert for push delivery
func (n Notification) Message() string {
	if n.Distance == nil {
		return fmt.Sprintf("%s clocked in outside the geofence at %s", n.StaffName, n.ClientName)
	}
	return fmt.Sprintf("%s clocked in outside the geofence at %s (%.0fm from site)", n.StaffName, n.ClientName, *n.Distance)
}

// Notifications lists every clocked-in marker whose geofence check failed.
// Markers that have not been validated yet are skipped.
func Notifications(sites []SiteView) []Notification {
	out := []Notification{}
	for _, site := range sites {
		for _, m := range site.ClockedInStaff {
			if m.GeofenceValidated == nil || *m.GeofenceValidated {
				continue
			}
			n := Notification{
				Type:        NotificationGeofenceViolation,
				ClientID:    site.Client.ID,
				ClientName:  site.Client.Name,
				StaffName:   "Unknown staff",
				Distance:    m.Distance,
				ShiftID:     m.ShiftID,
				TimesheetID: m.TimesheetID,
			}
			if m.StaffMember != nil {
				n.StaffID = m.StaffMember.ID
				n.StaffName = m.StaffMember.FullName()
			}
			out = append(out, n)
		}
	}
	return out
}
