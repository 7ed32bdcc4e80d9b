package livemap

import (
	"math"

	"shiftmap-backend/internal/models"
)

// IsValidLocation reports whether loc carries a usable latitude/longitude pair.
// A non-nil location is not enough: the capture layer sometimes persists {} or
// only one coordinate as a placeholder.
func IsValidLocation(loc *models.Location) bool {
	if loc == nil || loc.Latitude == nil || loc.Longitude == nil {
		return false
	}
	return isFinite(*loc.Latitude) && isFinite(*loc.Longitude)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// isMalformed is true for a location that is present but unusable. Absent
// locations are a normal state and are not reported.
func isMalformed(loc *models.Location) bool {
	return loc != nil && !IsValidLocation(loc)
}
