package livemap

import (
	"go.uber.org/zap"

	"shiftmap-backend/internal/models"
)

// index holds the per-pass lookups. When an id appears more than once the
// first row wins, matching a linear search over the input.
type index struct {
	clients             map[string]*models.Client
	staff               map[string]*models.Staff
	bookingsByShift     map[string]*models.Booking
	timesheetsByBooking map[string][]*models.Timesheet
}

func newIndex(in Input) *index {
	ix := &index{
		clients:             make(map[string]*models.Client, len(in.Clients)),
		staff:               make(map[string]*models.Staff, len(in.Staff)),
		bookingsByShift:     make(map[string]*models.Booking, len(in.Bookings)),
		timesheetsByBooking: make(map[string][]*models.Timesheet, len(in.Timesheets)),
	}
	for i := range in.Clients {
		c := &in.Clients[i]
		if _, ok := ix.clients[c.ID]; !ok {
			ix.clients[c.ID] = c
		}
	}
	for i := range in.Staff {
		s := &in.Staff[i]
		if _, ok := ix.staff[s.ID]; !ok {
			ix.staff[s.ID] = s
		}
	}
	for i := range in.Bookings {
		b := &in.Bookings[i]
		if _, ok := ix.bookingsByShift[b.ShiftID]; !ok {
			ix.bookingsByShift[b.ShiftID] = b
		}
	}
	for i := range in.Timesheets {
		t := &in.Timesheets[i]
		if t.BookingID == "" {
			continue
		}
		ix.timesheetsByBooking[t.BookingID] = append(ix.timesheetsByBooking[t.BookingID], t)
	}
	return ix
}

// candidates returns the booking a shift resolves to and every timesheet that
// references it. A booking id on the shift takes precedence; otherwise the
// booking whose shift_id points back at the shift is used.
func (ix *index) candidates(shift *models.Shift) (string, []*models.Timesheet) {
	if shift.BookingID != nil && *shift.BookingID != "" {
		return *shift.BookingID, ix.timesheetsByBooking[*shift.BookingID]
	}
	if b, ok := ix.bookingsByShift[shift.ID]; ok {
		return b.ID, ix.timesheetsByBooking[b.ID]
	}
	return "", nil
}

func (ix *index) staffFor(shift *models.Shift) *models.Staff {
	if shift.AssignedStaffID == nil {
		return nil
	}
	return ix.staff[*shift.AssignedStaffID]
}

// Candidates returns the booking id a shift links to and all timesheets for it
func Candidates(shift *models.Shift, bookings []models.Booking, timesheets []models.Timesheet) (string, []*models.Timesheet) {
	ix := newIndex(Input{Bookings: bookings, Timesheets: timesheets})
	return ix.candidates(shift)
}

// ResolveTimesheet finds the authoritative timesheet for a shift, or nil when
// none has been written yet.
func (e *Engine) ResolveTimesheet(shift *models.Shift, bookings []models.Booking, timesheets []models.Timesheet) *models.Timesheet {
	p := e.newPass(Input{Bookings: bookings, Timesheets: timesheets})
	return p.resolve(shift)
}

// resolve links a shift to its authoritative timesheet
func (p *pass) resolve(shift *models.Shift) *models.Timesheet {
	return p.choose(p.ix.candidates(shift))
}

// choose picks the authoritative timesheet for a booking and records any
// collision once per booking per pass
func (p *pass) choose(bookingID string, cands []*models.Timesheet) *models.Timesheet {
	sel := SelectAuthoritative(cands)
	if sel.Collision && !p.reported[bookingID] {
		p.reported[bookingID] = true
		c := newCollision(bookingID, cands, sel.Chosen)
		p.collisions = append(p.collisions, c)
		p.log.Warn("duplicate timesheets for booking, using latest",
			zap.String("booking_id", bookingID),
			zap.Strings("timesheet_ids", c.TimesheetIDs),
			zap.String("chosen_id", c.ChosenID),
		)
	}
	return sel.Chosen
}
