package livemap

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"shiftmap-backend/internal/models"
)

var tenAM = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func at(minutes int) time.Time { return tenAM.Add(time.Duration(minutes) * time.Minute) }

func site(id string, coords *models.Location) models.Client {
	return models.Client{ID: id, Name: "Site " + id, LocationCoordinates: coords}
}

func worker(id, first, last string) models.Staff {
	return models.Staff{ID: id, FirstName: first, LastName: last}
}

func shiftAt(id, clientID, staffID string) models.Shift {
	s := models.Shift{
		ID:       id,
		Date:     "2026-10-15",
		Status:   models.ShiftStatusInProgress,
		ClientID: clientID,
	}
	if staffID != "" {
		s.AssignedStaffID = ptr(staffID)
	}
	return s
}

func withBooking(s models.Shift, bookingID string) models.Shift {
	s.BookingID = ptr(bookingID)
	return s
}

func approaching(s models.Shift, lat, lng, distance float64) models.Shift {
	l := models.NewLocation(lat, lng)
	l.DistanceFromSite = ptr(distance)
	l.RecordedAt = ptr("2026-10-15T09:50:00Z")
	s.ApproachingStaffLocation = l
	return s
}

func sheet(id, bookingID string, created time.Time, clockIn *models.Location, validated *bool) models.Timesheet {
	return models.Timesheet{
		ID:                id,
		BookingID:         bookingID,
		StaffID:           "ST1",
		ClockInLocation:   clockIn,
		GeofenceValidated: validated,
		CreatedDate:       created,
	}
}

func observed() (*Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return NewEngine(zap.New(core)), logs
}
