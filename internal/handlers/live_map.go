package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/internal/services"
	"shiftmap-backend/pkg/utils"
)

// SnapshotBuilder rebuilds the live map on demand
type SnapshotBuilder interface {
	Snapshot(ctx context.Context, agencyID, date string) (*services.Snapshot, error)
}

// GetLiveMap returns the full live map for ?date= (default today)
func GetLiveMap(svc SnapshotBuilder) http.HandlerFunc {
	return liveMapHandler(svc, func(s *services.Snapshot) interface{} { return s })
}

// GetLiveMapStats returns only the summary counters
func GetLiveMapStats(svc SnapshotBuilder) http.HandlerFunc {
	return liveMapHandler(svc, func(s *services.Snapshot) interface{} {
		return map[string]interface{}{
			"date":         s.Date,
			"generated_at": s.GeneratedAt,
			"stats":        s.Stats,
			"incomplete":   s.Incomplete,
		}
	})
}

// GetLiveMapNotifications returns only the geofence violations
func GetLiveMapNotifications(svc SnapshotBuilder) http.HandlerFunc {
	return liveMapHandler(svc, func(s *services.Snapshot) interface{} {
		return map[string]interface{}{
			"date":          s.Date,
			"generated_at":  s.GeneratedAt,
			"notifications": s.Notifications,
		}
	})
}

func liveMapHandler(svc SnapshotBuilder, view func(*services.Snapshot) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agencyID := agencyScope(r)
		date := r.URL.Query().Get("date")

		snap, err := svc.Snapshot(r.Context(), agencyID, date)
		if err != nil {
			if errors.Is(err, services.ErrInvalidDate) {
				utils.RespondError(w, http.StatusBadRequest, err.Error())
				return
			}
			zap.L().Named("live_map").Error("failed to build live map",
				zap.String("agency_id", agencyID),
				zap.String("date", date),
				zap.Error(err),
			)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to build live map")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, view(snap))
	}
}

// agencyScope is the caller's own agency. Only users without one may pick an
// agency with ?agency_id=, and leaving it out shows every agency.
func agencyScope(r *http.Request) string {
	user, _ := middleware.GetUserFromContext(r)
	if user.AgencyID != "" {
		return user.AgencyID
	}
	return r.URL.Query().Get("agency_id")
}
