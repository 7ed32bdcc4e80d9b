// Package livemap reconciles the day's shifts, bookings, timesheets and clients
// into the live operations map: who is on their way to which site, who has
// clocked in, and the geofence compliance counters.
//
// Every function here is a pure transformation of one input snapshot. Nothing is
// cached between calls and inputs are never modified.
package livemap

import (
	"go.uber.org/zap"

	"shiftmap-backend/internal/models"
)

// Input is one snapshot of the record streams the map is built from
type Input struct {
	Shifts     []models.Shift
	Clients    []models.Client
	Staff      []models.Staff
	Bookings   []models.Booking
	Timesheets []models.Timesheet
}

// Result is everything derived from one Input
type Result struct {
	Sites         []SiteView     `json:"sites"`
	Stats         Stats          `json:"stats"`
	Notifications []Notification `json:"notifications"`
	Collisions    []Collision    `json:"collisions"`
}

// Engine builds live map views. The logger receives warnings for malformed
// locations and duplicate timesheets; the engine itself holds no state.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates an engine. A nil logger discards warnings.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log.Named("livemap")}
}

// pass carries lookups and collision bookkeeping for a single run
type pass struct {
	log        *zap.Logger
	ix         *index
	collisions []Collision
	reported   map[string]bool // booking ids already logged as collisions

	warnedClients map[string]bool
}

func (e *Engine) newPass(in Input) *pass {
	return &pass{
		log:      e.log,
		ix:       newIndex(in),
		reported: make(map[string]bool),

		warnedClients: make(map[string]bool),
	}
}

// Build runs the whole pipeline over one snapshot
func (e *Engine) Build(in Input) Result {
	p := e.newPass(in)
	sites := p.aggregate(in.Shifts)
	return Result{
		Sites:         sites,
		Stats:         p.summarize(in),
		Notifications: Notifications(sites),
		Collisions:    nonNil(p.collisions),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
