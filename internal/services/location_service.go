package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shiftmap-backend/internal/livemap"
	"shiftmap-backend/internal/models"
)

// MessageStaffLocationUpdate is the websocket message type for a shared location
const MessageStaffLocationUpdate = "staff_location_update"

// ErrInvalidLocation is returned when a shared location has no usable coordinates
var ErrInvalidLocation = errors.New("location must have finite latitude and longitude")

// LocationStore reads and writes the approaching location on a shift
type LocationStore interface {
	GetShiftForStaff(ctx context.Context, shiftID, staffID string) (*models.Shift, error)
	SetApproachingLocation(ctx context.Context, shiftID string, loc *models.Location) error
	ClearApproachingLocation(ctx context.Context, shiftID string) error
}

// LocationService records the live position staff share while travelling to a shift
type LocationService struct {
	store LocationStore
	hub   Broadcaster
	log   *zap.Logger
	now   func() time.Time
}

func NewLocationService(store LocationStore, hub Broadcaster, log *zap.Logger) *LocationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocationService{store: store, hub: hub, log: log.Named("location"), now: time.Now}
}

// Share stores loc as the staff member's approaching location for a shift
// assigned to them and tells the agency's managers. The staff id and
// recording time are filled in by the server.
func (s *LocationService) Share(ctx context.Context, staffID, shiftID string, loc models.Location) (*models.Location, error) {
	if !livemap.IsValidLocation(&loc) {
		return nil, ErrInvalidLocation
	}

	shift, err := s.store.GetShiftForStaff(ctx, shiftID, staffID)
	if err != nil {
		return nil, err
	}

	loc.StaffID = &staffID
	if loc.RecordedAt == nil {
		recordedAt := s.now().UTC().Format(time.RFC3339)
		loc.RecordedAt = &recordedAt
	}

	if err := s.store.SetApproachingLocation(ctx, shift.ID, &loc); err != nil {
		return nil, fmt.Errorf("failed to save approaching location: %w", err)
	}

	s.broadcast(shift, &loc)
	s.log.Debug("approaching location shared", zap.String("shift_id", shift.ID), zap.String("staff_id", staffID))
	return &loc, nil
}

// Clear removes the approaching location, typically once the staff member has clocked in
func (s *LocationService) Clear(ctx context.Context, staffID, shiftID string) error {
	shift, err := s.store.GetShiftForStaff(ctx, shiftID, staffID)
	if err != nil {
		return err
	}
	if err := s.store.ClearApproachingLocation(ctx, shift.ID); err != nil {
		return fmt.Errorf("failed to clear approaching location: %w", err)
	}

	s.broadcast(shift, nil)
	return nil
}

func (s *LocationService) broadcast(shift *models.Shift, loc *models.Location) {
	if s.hub == nil {
		return
	}
	msg := map[string]interface{}{
		"type": MessageStaffLocationUpdate,
		"data": map[string]interface{}{
			"shift_id":  shift.ID,
			"client_id": shift.ClientID,
			"location":  loc,
		},
	}
	// Agency managers, then managers who see every agency
	s.hub.BroadcastToAgency(shift.AgencyID, msg)
	s.hub.BroadcastToAgency("", msg)
}
