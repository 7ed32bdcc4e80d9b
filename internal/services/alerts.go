package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"shiftmap-backend/internal/livemap"
)

// TokenSource lists the device tokens that should hear about an agency
type TokenSource interface {
	ListManagerFCMTokens(ctx context.Context, agencyID string) ([]string, error)
}

// Pusher delivers one message to many devices
type Pusher interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// GeofenceAlerter pushes geofence violations to an agency's managers
type GeofenceAlerter struct {
	tokens TokenSource
	push   Pusher
	log    *zap.Logger
}

func NewGeofenceAlerter(tokens TokenSource, push Pusher, log *zap.Logger) *GeofenceAlerter {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeofenceAlerter{tokens: tokens, push: push, log: log.Named("alerts")}
}

// Alert sends one violation. Having no registered devices is not an error.
func (a *GeofenceAlerter) Alert(ctx context.Context, agencyID string, n livemap.Notification) error {
	tokens, err := a.tokens.ListManagerFCMTokens(ctx, agencyID)
	if err != nil {
		return fmt.Errorf("failed to load manager tokens: %w", err)
	}
	if len(tokens) == 0 {
		a.log.Debug("no manager devices registered", zap.String("agency_id", agencyID))
		return nil
	}

	data := map[string]string{
		"type":         n.Type,
		"agency_id":    agencyID,
		"client_id":    n.ClientID,
		"shift_id":     n.ShiftID,
		"timesheet_id": n.TimesheetID,
		"staff_id":     n.StaffID,
	}
	if n.Distance != nil {
		data["distance"] = strconv.FormatFloat(*n.Distance, 'f', 0, 64)
	}

	return a.push.SendMulticast(ctx, tokens, "Geofence violation", n.Message(), data)
}
