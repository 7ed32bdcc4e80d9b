package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"shiftmap-backend/internal/livemap"
	"shiftmap-backend/internal/models"
)

// DateLayout is the format of shift dates
const DateLayout = "2006-01-02"

// buildTimeout bounds a shared rebuild, which outlives any single caller
const buildTimeout = 30 * time.Second

// ErrInvalidDate is returned for a date that is not YYYY-MM-DD
var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// LiveMapSource loads the record streams the live map is built from
type LiveMapSource interface {
	ListActiveShifts(ctx context.Context, agencyID, date string) ([]models.Shift, error)
	ListClients(ctx context.Context, agencyID string) ([]models.Client, error)
	ListStaff(ctx context.Context, agencyID string) ([]models.Staff, error)
	ListBookingsForDate(ctx context.Context, agencyID, date string) ([]models.Booking, error)
	ListTimesheetsForDate(ctx context.Context, agencyID, date string) ([]models.Timesheet, error)
}

// Snapshot is one complete rebuild of the live map
type Snapshot struct {
	AgencyID    string    `json:"agency_id,omitempty"`
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generated_at"`
	livemap.Result

	// Sources that failed to load and were treated as empty
	Incomplete []string `json:"incomplete,omitempty"`
}

// LiveMapService fetches a consistent-enough snapshot of the day's records and
// runs the reconciliation engine over it. Concurrent requests for the same
// agency and date share one rebuild.
type LiveMapService struct {
	source LiveMapSource
	engine *livemap.Engine
	log    *zap.Logger
	group  singleflight.Group
	now    func() time.Time
}

func NewLiveMapService(source LiveMapSource, log *zap.Logger) *LiveMapService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LiveMapService{
		source: source,
		engine: livemap.NewEngine(log),
		log:    log.Named("live_map"),
		now:    time.Now,
	}
}

// Today returns the service's current date
func (s *LiveMapService) Today() string {
	return s.now().Format(DateLayout)
}

// Snapshot rebuilds the live map for an agency ("" for all agencies) on a
// date ("" for today). A source that fails to load is logged and replaced by an
// empty collection so the map still renders.
func (s *LiveMapService) Snapshot(ctx context.Context, agencyID, date string) (*Snapshot, error) {
	if date == "" {
		date = s.Today()
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The rebuild is shared, so one caller going away must not fail the others
	ch := s.group.DoChan(agencyID+"|"+date, func() (interface{}, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		return s.build(bctx, agencyID, date)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (s *LiveMapService) build(ctx context.Context, agencyID, date string) (*Snapshot, error) {
	var (
		in     livemap.Input
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name string, load func(context.Context) error) {
		g.Go(func() error {
			if err := load(gctx); err != nil {
				s.log.Warn("live map source failed, using empty collection",
					zap.String("source", name),
					zap.String("agency_id", agencyID),
					zap.String("date", date),
					zap.Error(err),
				)
				mu.Lock()
				failed = append(failed, name)
				mu.Unlock()
			}
			return nil
		})
	}

	fetch("shifts", func(ctx context.Context) (err error) {
		in.Shifts, err = s.source.ListActiveShifts(ctx, agencyID, date)
		return err
	})
	fetch("clients", func(ctx context.Context) (err error) {
		in.Clients, err = s.source.ListClients(ctx, agencyID)
		return err
	})
	fetch("staff", func(ctx context.Context) (err error) {
		in.Staff, err = s.source.ListStaff(ctx, agencyID)
		return err
	})
	fetch("bookings", func(ctx context.Context) (err error) {
		in.Bookings, err = s.source.ListBookingsForDate(ctx, agencyID, date)
		return err
	})
	fetch("timesheets", func(ctx context.Context) (err error) {
		in.Timesheets, err = s.source.ListTimesheetsForDate(ctx, agencyID, date)
		return err
	})
	_ = g.Wait()

	// Timed out; every source would read as failed
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(failed)
	snap := &Snapshot{
		AgencyID:    agencyID,
		Date:        date,
		GeneratedAt: s.now().UTC(),
		Result:      s.engine.Build(in),
		Incomplete:  failed,
	}

	s.log.Debug("live map rebuilt",
		zap.String("agency_id", agencyID),
		zap.String("date", date),
		zap.Int("sites", len(snap.Sites)),
		zap.Int("shifts", snap.Stats.TotalShifts),
		zap.Int("collisions", len(snap.Collisions)),
	)
	return snap, nil
}
