package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/internal/models"
	"shiftmap-backend/internal/services"
	"shiftmap-backend/pkg/utils"
)

// LocationRecorder stores the live location staff share on the way to a shift
type LocationRecorder interface {
	Share(ctx context.Context, staffID, shiftID string, loc models.Location) (*models.Location, error)
	Clear(ctx context.Context, staffID, shiftID string) error
}

// ShareApproachingLocation handles POST /api/staff/shifts/{id}/approaching-location
func ShareApproachingLocation(svc LocationRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, ok := staffFromRequest(w, r)
		if !ok {
			return
		}
		shiftID := chi.URLParam(r, "id")

		var loc models.Location
		if err := decodeJSON(r, &loc); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		saved, err := svc.Share(r.Context(), staffID, shiftID, loc)
		if err != nil {
			respondLocationError(w, shiftID, err)
			return
		}
		utils.RespondSuccess(w, http.StatusOK, saved)
	}
}

// ClearApproachingLocation handles DELETE /api/staff/shifts/{id}/approaching-location
func ClearApproachingLocation(svc LocationRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, ok := staffFromRequest(w, r)
		if !ok {
			return
		}
		shiftID := chi.URLParam(r, "id")

		if err := svc.Clear(r.Context(), staffID, shiftID); err != nil {
			respondLocationError(w, shiftID, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func staffFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := middleware.GetUserFromContext(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	if user.StaffID == "" {
		utils.RespondError(w, http.StatusForbidden, "Account is not linked to a staff member")
		return "", false
	}
	return user.StaffID, true
}

func respondLocationError(w http.ResponseWriter, shiftID string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidLocation):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "Shift not found")
	default:
		zap.L().Named("location").Error("failed to update approaching location", zap.String("shift_id", shiftID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to update location")
	}
}
