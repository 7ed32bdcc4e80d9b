package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"shiftmap-backend/internal/models"
)

const uniqueViolation = "23505"

// GetUserByEmail loads a user for login
func GetUserByEmail(ctx context.Context, db *sqlx.DB, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, password, name, role, agency_id, staff_id, created_at, updated_at
		FROM users WHERE email = $1`
	if err := db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpsertFCMToken registers a device token for push alerts
func UpsertFCMToken(ctx context.Context, db *sqlx.DB, userID, token, deviceType string) error {
	query := `
		INSERT INTO fcm_tokens (user_id, token, device_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (token)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			device_type = EXCLUDED.device_type,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
	`
	if _, err := db.ExecContext(ctx, query, userID, token, deviceType); err != nil {
		return fmt.Errorf("failed to save FCM token: %w", err)
	}
	return nil
}

// ListManagerFCMTokens returns device tokens of managers who can see the agency.
// Managers without an agency see every agency.
func ListManagerFCMTokens(ctx context.Context, db *sqlx.DB, agencyID string) ([]string, error) {
	query := `
		SELECT t.token
		FROM fcm_tokens t
		INNER JOIN users u ON u.id = t.user_id
		WHERE u.role IN ('admin', 'manager')
		  AND (u.agency_id IS NULL OR u.agency_id = $1)
		ORDER BY t.id
	`
	tokens := []string{}
	if err := db.SelectContext(ctx, &tokens, query, agencyID); err != nil {
		return nil, fmt.Errorf("failed to list manager tokens: %w", err)
	}
	return tokens, nil
}

// CreateUser inserts a user whose password is already hashed
func CreateUser(ctx context.Context, db *sqlx.DB, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password, name, role, agency_id, staff_id)
		VALUES (:id, :email, :password, :name, :role, :agency_id, :staff_id)
	`
	if _, err := db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
