package livemap

import (
	"slices"

	"shiftmap-backend/internal/models"
)

// Selection is the outcome of picking one authoritative timesheet out of the
// rows that reference the same booking.
type Selection struct {
	Chosen    *models.Timesheet
	Collision bool
}

// Collision records a booking that had more than one timesheet in a pass
type Collision struct {
	BookingID    string   `json:"booking_id"`
	TimesheetIDs []string `json:"timesheet_ids"` // Newest first
	ChosenID     string   `json:"chosen_id"`
}

// SelectAuthoritative returns the most recently created timesheet. Equal
// created_date values fall back to the greatest id so repeated passes over the
// same rows always choose the same one. The candidates slice is not modified.
func SelectAuthoritative(candidates []*models.Timesheet) Selection {
	switch len(candidates) {
	case 0:
		return Selection{}
	case 1:
		return Selection{Chosen: candidates[0]}
	}

	chosen := candidates[0]
	for _, t := range candidates[1:] {
		if newer(t, chosen) {
			chosen = t
		}
	}
	return Selection{Chosen: chosen, Collision: true}
}

func newer(a, b *models.Timesheet) bool {
	if !a.CreatedDate.Equal(b.CreatedDate) {
		return a.CreatedDate.After(b.CreatedDate)
	}
	return a.ID > b.ID
}

// newCollision lists the competing ids newest first
func newCollision(bookingID string, candidates []*models.Timesheet, chosen *models.Timesheet) Collision {
	ordered := make([]*models.Timesheet, len(candidates))
	copy(ordered, candidates)
	slices.SortFunc(ordered, func(a, b *models.Timesheet) int {
		switch {
		case newer(a, b):
			return -1
		case newer(b, a):
			return 1
		}
		return 0
	})

	ids := make([]string, len(ordered))
	for i, t := range ordered {
		ids[i] = t.ID
	}
	return Collision{BookingID: bookingID, TimesheetIDs: ids, ChosenID: chosen.ID}
}
