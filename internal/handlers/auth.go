package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/internal/models"
	"shiftmap-backend/pkg/utils"
)

// UserStore is the account storage used by the auth endpoints
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertFCMToken(ctx context.Context, userID, token, deviceType string) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

func Login(users UserStore, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L().Named("auth")

		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := users.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Error("failed to load user", zap.Error(err))
				utils.RespondError(w, http.StatusInternalServerError, "Failed to sign in")
				return
			}
			log.Info("login for unknown email")
			utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Info("invalid password", zap.String("user_id", user.ID))
			utils.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		token, err := middleware.IssueToken(jwtSecret, user, time.Now())
		if err != nil {
			log.Error("failed to create token", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		log.Info("login successful", zap.String("user_id", user.ID), zap.String("role", user.Role))
		utils.RespondSuccess(w, http.StatusOK, LoginResponse{Token: token, User: user.ToUserResponse()})
	}
}

// GetCurrentUser returns the claims of the signed-in user
func GetCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		utils.RespondSuccess(w, http.StatusOK, user)
	}
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token" validate:"required"`
	DeviceType string `json:"device_type" validate:"required,oneof=ios android web"`
}

// RegisterFCMToken stores a device token so managers receive geofence alerts
func RegisterFCMToken(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req RegisterFCMTokenRequest
		if err := decodeJSON(r, &req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := users.UpsertFCMToken(r.Context(), user.UserID, req.Token, req.DeviceType); err != nil {
			zap.L().Named("auth").Error("failed to save FCM token", zap.String("user_id", user.UserID), zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}
		utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "token registered"})
	}
}
