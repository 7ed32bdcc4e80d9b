package models

// DefaultGeofenceRadiusMeters applies when a client has no radius configured
const DefaultGeofenceRadiusMeters = 100

// Client is a care site. Clients without usable coordinates never appear on the map.
type Client struct {
	ID                   string    `json:"id" db:"id"`
	AgencyID             string    `json:"agency_id" db:"agency_id"`
	Name                 string    `json:"name" db:"name"`
	LocationCoordinates  *Location `json:"location_coordinates" db:"location_coordinates"`
	GeofenceRadiusMeters *int      `json:"geofence_radius_meters" db:"geofence_radius_meters"`
}

// GeofenceRadius returns the configured radius or the default
func (c *Client) GeofenceRadius() int {
	if c.GeofenceRadiusMeters == nil || *c.GeofenceRadiusMeters <= 0 {
		return DefaultGeofenceRadiusMeters
	}
	return *c.GeofenceRadiusMeters
}

// Staff is a care worker, looked up by id only
type Staff struct {
	ID        string `json:"id" db:"id"`
	AgencyID  string `json:"agency_id" db:"agency_id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

// FullName joins first and last name
func (s *Staff) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
