package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shiftmap-backend/internal/models"
)

// Store exposes the package functions as methods so services can depend on
// small interfaces instead of *sqlx.DB.
type Store struct {
	DB *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) ListActiveShifts(ctx context.Context, agencyID, date string) ([]models.Shift, error) {
	return ListActiveShifts(ctx, s.DB, agencyID, date)
}

func (s *Store) ListClients(ctx context.Context, agencyID string) ([]models.Client, error) {
	return ListClients(ctx, s.DB, agencyID)
}

func (s *Store) ListStaff(ctx context.Context, agencyID string) ([]models.Staff, error) {
	return ListStaff(ctx, s.DB, agencyID)
}

func (s *Store) ListBookingsForDate(ctx context.Context, agencyID, date string) ([]models.Booking, error) {
	return ListBookingsForDate(ctx, s.DB, agencyID, date)
}

func (s *Store) ListTimesheetsForDate(ctx context.Context, agencyID, date string) ([]models.Timesheet, error) {
	return ListTimesheetsForDate(ctx, s.DB, agencyID, date)
}

func (s *Store) GetShiftForStaff(ctx context.Context, shiftID, staffID string) (*models.Shift, error) {
	return GetShiftForStaff(ctx, s.DB, shiftID, staffID)
}

func (s *Store) SetApproachingLocation(ctx context.Context, shiftID string, loc *models.Location) error {
	return SetApproachingLocation(ctx, s.DB, shiftID, loc)
}

func (s *Store) ClearApproachingLocation(ctx context.Context, shiftID string) error {
	return ClearApproachingLocation(ctx, s.DB, shiftID)
}

func (s *Store) ListManagerFCMTokens(ctx context.Context, agencyID string) ([]string, error) {
	return ListManagerFCMTokens(ctx, s.DB, agencyID)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return GetUserByEmail(ctx, s.DB, email)
}

func (s *Store) UpsertFCMToken(ctx context.Context, userID, token, deviceType string) error {
	return UpsertFCMToken(ctx, s.DB, userID, token, deviceType)
}

func (s *Store) ListAgenciesWithShifts(ctx context.Context, date string) ([]string, error) {
	return ListAgenciesWithShifts(ctx, s.DB, date)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return CreateUser(ctx, s.DB, user)
}
