package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"shiftmap-backend/internal/livemap"
)

// MessageLiveMapSnapshot is the websocket message type carrying a Snapshot
const MessageLiveMapSnapshot = "live_map_snapshot"

// Broadcaster delivers messages to connected managers
type Broadcaster interface {
	// ConnectedAgencies returns the agencies with at least one manager
	// connected. "" stands for managers who see every agency.
	ConnectedAgencies() []string
	BroadcastToAgency(agencyID string, data interface{})
}

// AgencyLister finds agencies with live shifts on a date
type AgencyLister interface {
	ListAgenciesWithShifts(ctx context.Context, date string) ([]string, error)
}

// Alerter delivers one geofence violation
type Alerter interface {
	Alert(ctx context.Context, agencyID string, n livemap.Notification) error
}

// Poller rebuilds the live map on a fixed interval, pushes it to connected
// managers and raises a push alert the first time a violation is seen.
type Poller struct {
	svc      *LiveMapService
	hub      Broadcaster
	agencies AgencyLister
	alerts   Alerter
	interval time.Duration
	log      *zap.Logger

	// Violations already alerted, by timesheet id. Reset when the day changes.
	alerted    map[string]bool
	alertedDay string
}

// NewPoller creates a poller. agencies and alerts may be nil, in which case
// only connected agencies are polled and no push alerts are sent.
func NewPoller(svc *LiveMapService, hub Broadcaster, agencies AgencyLister, alerts Alerter, interval time.Duration, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		svc:      svc,
		hub:      hub,
		agencies: agencies,
		alerts:   alerts,
		interval: interval,
		log:      log.Named("poller"),
		alerted:  make(map[string]bool),
	}
}

// Run ticks until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("live map poller started", zap.Duration("interval", p.interval))
	p.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("live map poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one refresh of every agency that is being watched or has live shifts
func (p *Poller) Tick(ctx context.Context) {
	today := p.svc.Today()
	if today != p.alertedDay {
		p.alerted = make(map[string]bool)
		p.alertedDay = today
	}

	watched := make(map[string]bool)
	for _, agencyID := range p.hub.ConnectedAgencies() {
		watched[agencyID] = true
	}

	targets := make(map[string]bool, len(watched))
	for agencyID := range watched {
		targets[agencyID] = true
	}
	if p.agencies != nil && p.alerts != nil {
		active, err := p.agencies.ListAgenciesWithShifts(ctx, today)
		if err != nil {
			p.log.Warn("failed to list agencies with shifts", zap.Error(err))
		}
		for _, agencyID := range active {
			targets[agencyID] = true
		}
	}

	keys := make([]string, 0, len(targets))
	for agencyID := range targets {
		keys = append(keys, agencyID)
	}
	sort.Strings(keys)

	for _, agencyID := range keys {
		if ctx.Err() != nil {
			return
		}

		snap, err := p.svc.Snapshot(ctx, agencyID, today)
		if err != nil {
			p.log.Warn("failed to rebuild live map", zap.String("agency_id", agencyID), zap.Error(err))
			continue
		}

		if watched[agencyID] {
			p.hub.BroadcastToAgency(agencyID, map[string]interface{}{
				"type": MessageLiveMapSnapshot,
				"data": snap,
			})
		}

		// The all-agencies view would repeat every agency's alerts
		if agencyID != "" {
			p.alert(ctx, agencyID, snap.Notifications)
		}
	}
}

func (p *Poller) alert(ctx context.Context, agencyID string, notifications []livemap.Notification) {
	if p.alerts == nil {
		return
	}
	for _, n := range notifications {
		if p.alerted[n.TimesheetID] {
			continue
		}
		if err := p.alerts.Alert(ctx, agencyID, n); err != nil {
			p.log.Warn("failed to send geofence alert",
				zap.String("agency_id", agencyID),
				zap.String("timesheet_id", n.TimesheetID),
				zap.Error(err),
			)
			continue
		}
		p.alerted[n.TimesheetID] = true
	}
}
