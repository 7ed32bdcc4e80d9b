package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/internal/models"
	"shiftmap-backend/pkg/utils"
)

// UserCreator stores new accounts
type UserCreator interface {
	CreateUser(ctx context.Context, user *models.User) error
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin manager staff"`
	AgencyID string `json:"agency_id"`
	StaffID  string `json:"staff_id" validate:"required_if=Role staff"`
}

// CreateUser creates a manager, admin or staff login (admin only).
// Admins tied to an agency can only create users in that agency.
func CreateUser(users UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L().Named("users")
		caller, _ := middleware.GetUserFromContext(r)

		var req CreateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if caller.AgencyID != "" {
			req.AgencyID = caller.AgencyID
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("failed to hash password", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		user := &models.User{
			ID:       uuid.New().String(),
			Email:    req.Email,
			Password: string(hashedPassword),
			Name:     req.Name,
			Role:     req.Role,
		}
		if req.AgencyID != "" {
			user.AgencyID = &req.AgencyID
		}
		if req.StaffID != "" {
			user.StaffID = &req.StaffID
		}

		if err := users.CreateUser(r.Context(), user); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				utils.RespondError(w, http.StatusConflict, "User with this email already exists")
				return
			}
			log.Error("failed to create user", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Info("user created",
			zap.String("user_id", user.ID),
			zap.String("role", user.Role),
			zap.String("created_by", caller.UserID),
		)
		utils.RespondSuccess(w, http.StatusCreated, user.ToUserResponse())
	}
}
