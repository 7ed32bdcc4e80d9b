package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftmap-backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestListActiveShifts_DecodesLocations(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{
		"id", "agency_id", "date", "start_time", "end_time", "status",
		"client_id", "assigned_staff_id", "booking_id", "approaching_staff_location",
	}).
		AddRow("S1", "A1", "2026-10-15", "08:00", "14:00", "in_progress", "C1", "ST1", "B1",
			[]byte(`{"latitude": 54.1, "longitude": -1.2, "distance_from_site": 400}`)).
		AddRow("S2", "A1", "2026-10-15", "09:00", "17:00", "confirmed", "C2", nil, nil, []byte(`{}`)).
		AddRow("S3", "A1", "2026-10-15", "10:00", "16:00", "assigned", "C3", nil, nil, nil).
		AddRow("S4", "A1", "2026-10-15", "11:00", "15:00", "assigned", "C3", nil, nil, []byte(`null`))

	mock.ExpectQuery("FROM shifts").
		WithArgs("2026-10-15", sqlmock.AnyArg(), "A1").
		WillReturnRows(rows)

	shifts, err := ListActiveShifts(context.Background(), db, "A1", "2026-10-15")
	require.NoError(t, err)
	require.Len(t, shifts, 4)

	assert.Equal(t, models.ShiftStatusInProgress, shifts[0].Status)
	assert.Equal(t, "B1", *shifts[0].BookingID)
	require.NotNil(t, shifts[0].ApproachingStaffLocation)
	assert.Equal(t, 400.0, *shifts[0].ApproachingStaffLocation.DistanceFromSite)

	// {} survives as a non-nil but empty location
	require.NotNil(t, shifts[1].ApproachingStaffLocation)
	assert.Nil(t, shifts[1].ApproachingStaffLocation.Latitude)
	assert.Nil(t, shifts[1].AssignedStaffID)

	assert.Nil(t, shifts[2].ApproachingStaffLocation)
	// a stored JSON null is absent, not a malformed location
	assert.Nil(t, shifts[3].ApproachingStaffLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTimesheetsForDate(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 10, 15, 10, 5, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "agency_id", "booking_id", "shift_id", "staff_id", "shift_date",
		"clock_in_location", "geofence_validated", "geofence_distance_meters", "status", "created_date",
	}).
		AddRow("T1", "A1", "B1", nil, "ST1", "2026-10-15", nil, nil, nil, "draft", created.Add(-5*time.Minute)).
		AddRow("T2", "A1", "B1", "S1", "ST1", "2026-10-15", []byte(`{"latitude": 54.1, "longitude": -1.2, "accuracy": 9}`), true, 14.5, "draft", created)

	mock.ExpectQuery("FROM timesheets").
		WithArgs("2026-10-15", "").
		WillReturnRows(rows)

	timesheets, err := ListTimesheetsForDate(context.Background(), db, "", "2026-10-15")
	require.NoError(t, err)
	require.Len(t, timesheets, 2)

	assert.Nil(t, timesheets[0].ClockInLocation)
	assert.Nil(t, timesheets[0].GeofenceValidated)
	assert.True(t, *timesheets[1].GeofenceValidated)
	assert.Equal(t, 14.5, *timesheets[1].GeofenceDistanceMeters)
	assert.Equal(t, 9.0, *timesheets[1].ClockInLocation.Accuracy)
	assert.True(t, created.Equal(timesheets[1].CreatedDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListClients_NullCoordinatesAreAbsent(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "agency_id", "name", "location_coordinates", "geofence_radius_meters"}).
		AddRow("C1", "A1", "Rose House", []byte(`{"latitude": 54.0, "longitude": -1.0}`), 150).
		AddRow("C2", "A1", "Oak Lodge", []byte(` null `), nil).
		AddRow("C3", "A1", "Elm Court", []byte(`"pending"`), nil)
	mock.ExpectQuery("FROM clients").WithArgs("A1").WillReturnRows(rows)

	clients, err := ListClients(context.Background(), db, "A1")
	require.NoError(t, err)
	require.Len(t, clients, 3)

	require.NotNil(t, clients[0].LocationCoordinates)
	assert.Equal(t, 54.0, *clients[0].LocationCoordinates.Latitude)
	assert.Nil(t, clients[1].LocationCoordinates)
	require.NotNil(t, clients[2].LocationCoordinates)
	assert.Nil(t, clients[2].LocationCoordinates.Latitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListClients_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM clients").WillReturnError(assert.AnError)

	_, err := ListClients(context.Background(), db, "A1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetShiftForStaff_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM shifts WHERE id").
		WithArgs("S1", "ST9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := GetShiftForStaff(context.Background(), db, "S1", "ST9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetApproachingLocation(t *testing.T) {
	db, mock := newMockDB(t)
	loc := models.NewLocation(54.1, -1.2)

	mock.ExpectExec("UPDATE shifts SET approaching_staff_location").
		WithArgs("S1", `{"latitude":54.1,"longitude":-1.2}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, SetApproachingLocation(context.Background(), db, "S1", loc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearApproachingLocation_UnknownShift(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE shifts SET approaching_staff_location").
		WithArgs("missing", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, ClearApproachingLocation(context.Background(), db, "missing"), ErrNotFound)
}

func TestListManagerFCMTokens(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM fcm_tokens").
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("tok-1").AddRow("tok-2"))

	tokens, err := ListManagerFCMTokens(context.Background(), db, "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1", "tok-2"}, tokens)
}
