package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/models"
)

type fakeLocationStore struct {
	shift   *models.Shift
	saved   *models.Location
	cleared string
}

func (f *fakeLocationStore) GetShiftForStaff(ctx context.Context, shiftID, staffID string) (*models.Shift, error) {
	if f.shift == nil || f.shift.ID != shiftID || f.shift.AssignedStaffID == nil || *f.shift.AssignedStaffID != staffID {
		return nil, database.ErrNotFound
	}
	return f.shift, nil
}

func (f *fakeLocationStore) SetApproachingLocation(ctx context.Context, shiftID string, loc *models.Location) error {
	f.saved = loc
	return nil
}

func (f *fakeLocationStore) ClearApproachingLocation(ctx context.Context, shiftID string) error {
	f.cleared = shiftID
	return nil
}

func newLocationFixture() (*LocationService, *fakeLocationStore, *fakeHub) {
	store := &fakeLocationStore{shift: &models.Shift{ID: "S1", AgencyID: "A1", ClientID: "C1", AssignedStaffID: ptr("ST1")}}
	hub := &fakeHub{}
	svc := NewLocationService(store, hub, nil)
	svc.now = func() time.Time { return testDay }
	return svc, store, hub
}

func TestShareStoresAndBroadcasts(t *testing.T) {
	svc, store, hub := newLocationFixture()
	loc := *models.NewLocation(54.58, -1.21)
	loc.DistanceFromSite = ptr(640.0)

	saved, err := svc.Share(context.Background(), "ST1", "S1", loc)
	require.NoError(t, err)

	require.NotNil(t, store.saved)
	assert.Equal(t, "ST1", *saved.StaffID)
	assert.Equal(t, "2026-10-15T09:30:00Z", *saved.RecordedAt)
	assert.Equal(t, 640.0, *store.saved.DistanceFromSite)

	require.Len(t, hub.broadcasts, 2)
	assert.Equal(t, "A1", hub.broadcasts[0].agencyID)
	assert.Equal(t, "", hub.broadcasts[1].agencyID)
	msg := hub.broadcasts[0].data.(map[string]interface{})
	assert.Equal(t, MessageStaffLocationUpdate, msg["type"])
}

func TestShareKeepsClientTimestamp(t *testing.T) {
	svc, _, _ := newLocationFixture()
	loc := *models.NewLocation(54.58, -1.21)
	loc.RecordedAt = ptr("2026-10-15T09:20:00Z")

	saved, err := svc.Share(context.Background(), "ST1", "S1", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15T09:20:00Z", *saved.RecordedAt)
}

func TestShareRejectsMalformedLocation(t *testing.T) {
	cases := map[string]models.Location{
		"empty":         {},
		"latitude only": {Latitude: ptr(54.5)},
		"nan":           {Latitude: ptr(math.NaN()), Longitude: ptr(-1.2)},
	}
	for name, loc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, store, hub := newLocationFixture()

			_, err := svc.Share(context.Background(), "ST1", "S1", loc)
			assert.ErrorIs(t, err, ErrInvalidLocation)
			assert.Nil(t, store.saved)
			assert.Empty(t, hub.broadcasts)
		})
	}
}

func TestShareRequiresAssignment(t *testing.T) {
	svc, store, _ := newLocationFixture()

	_, err := svc.Share(context.Background(), "ST2", "S1", *models.NewLocation(54.5, -1.2))
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.Nil(t, store.saved)
}

func TestClearRemovesLocation(t *testing.T) {
	svc, store, hub := newLocationFixture()

	require.NoError(t, svc.Clear(context.Background(), "ST1", "S1"))
	assert.Equal(t, "S1", store.cleared)
	assert.Len(t, hub.broadcasts, 2)
}
