package services

import (
	"context"
	"sync"
	"time"

	"shiftmap-backend/internal/livemap"
	"shiftmap-backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

var testDay = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

// fakeSource serves one violating clock-in at a single site
type fakeSource struct {
	mu    sync.Mutex
	calls int
	fail  map[string]error
	dates []string
}

func (f *fakeSource) err(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.fail[name]
}

func (f *fakeSource) ListActiveShifts(ctx context.Context, agencyID, date string) ([]models.Shift, error) {
	f.mu.Lock()
	f.calls++
	f.dates = append(f.dates, date)
	f.mu.Unlock()
	if err := f.err(ctx, "shifts"); err != nil {
		return nil, err
	}
	return []models.Shift{{
		ID:              "S1",
		AgencyID:        "A1",
		Date:            date,
		Status:          models.ShiftStatusInProgress,
		ClientID:        "C1",
		AssignedStaffID: ptr("ST1"),
		BookingID:       ptr("B1"),
	}}, nil
}

func (f *fakeSource) ListClients(ctx context.Context, agencyID string) ([]models.Client, error) {
	if err := f.err(ctx, "clients"); err != nil {
		return nil, err
	}
	return []models.Client{{ID: "C1", AgencyID: "A1", Name: "Rosewood House", LocationCoordinates: models.NewLocation(54.57, -1.23)}}, nil
}

func (f *fakeSource) ListStaff(ctx context.Context, agencyID string) ([]models.Staff, error) {
	if err := f.err(ctx, "staff"); err != nil {
		return nil, err
	}
	return []models.Staff{{ID: "ST1", AgencyID: "A1", FirstName: "Amara", LastName: "Okafor"}}, nil
}

func (f *fakeSource) ListBookingsForDate(ctx context.Context, agencyID, date string) ([]models.Booking, error) {
	if err := f.err(ctx, "bookings"); err != nil {
		return nil, err
	}
	return []models.Booking{{ID: "B1", AgencyID: "A1", ShiftID: "S1", ClientID: "C1", StaffID: "ST1", ShiftDate: date}}, nil
}

func (f *fakeSource) ListTimesheetsForDate(ctx context.Context, agencyID, date string) ([]models.Timesheet, error) {
	if err := f.err(ctx, "timesheets"); err != nil {
		return nil, err
	}
	return []models.Timesheet{{
		ID:                "T1",
		AgencyID:          "A1",
		BookingID:         "B1",
		StaffID:           "ST1",
		ShiftDate:         date,
		ClockInLocation:   models.NewLocation(54.58, -1.20),
		GeofenceValidated: ptr(false),
		CreatedDate:       testDay,
	}}, nil
}

// gatedSource holds the shifts query open until release is closed
type gatedSource struct {
	fakeSource
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedSource) ListActiveShifts(ctx context.Context, agencyID, date string) ([]models.Shift, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.fakeSource.ListActiveShifts(ctx, agencyID, date)
}

type broadcast struct {
	agencyID string
	data     interface{}
}

type fakeHub struct {
	mu         sync.Mutex
	agencies   []string
	broadcasts []broadcast
}

func (h *fakeHub) ConnectedAgencies() []string { return h.agencies }

func (h *fakeHub) BroadcastToAgency(agencyID string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, broadcast{agencyID, data})
}

type fakeAgencies struct {
	ids []string
	err error
}

func (f fakeAgencies) ListAgenciesWithShifts(ctx context.Context, date string) ([]string, error) {
	return f.ids, f.err
}

type sentAlert struct {
	agencyID string
	n        livemap.Notification
}

type fakeAlerter struct {
	sent []sentAlert
	err  error
}

func (f *fakeAlerter) Alert(ctx context.Context, agencyID string, n livemap.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentAlert{agencyID, n})
	return nil
}

func newTestService(src LiveMapSource) *LiveMapService {
	svc := NewLiveMapService(src, nil)
	svc.now = func() time.Time { return testDay }
	return svc
}
