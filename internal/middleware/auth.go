package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"shiftmap-backend/internal/models"
	"shiftmap-backend/pkg/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenTTL is how long a login token stays valid
const TokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type UserClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	AgencyID string `json:"agency_id,omitempty"` // Empty for users who see every agency
	StaffID  string `json:"staff_id,omitempty"`
}

// IsManager reports whether the caller may view the live map
func (c UserClaims) IsManager() bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleManager
}

// IssueToken signs a login token for the user
func IssueToken(secret string, user *models.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	}
	if user.AgencyID != nil {
		claims["agency_id"] = *user.AgencyID
	}
	if user.StaffID != nil {
		claims["staff_id"] = *user.StaffID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a signed token and extracts the user claims
func ParseToken(secret, tokenString string) (UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return UserClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return UserClaims{}, ErrInvalidToken
	}

	user := UserClaims{
		UserID:   claimString(claims, "user_id"),
		Email:    claimString(claims, "email"),
		Role:     claimString(claims, "role"),
		AgencyID: claimString(claims, "agency_id"),
		StaffID:  claimString(claims, "staff_id"),
	}
	if user.UserID == "" || user.Role == "" {
		return UserClaims{}, fmt.Errorf("%w: missing user_id or role", ErrInvalidToken)
	}
	return user, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// Auth middleware validates the bearer token and adds user claims to the context
func Auth(secret string) func(http.Handler) http.Handler {
	log := zap.L().Named("auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				log.Debug("missing bearer token", zap.String("path", r.URL.Path))
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := ParseToken(secret, tokenString)
			if err != nil {
				log.Info("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole middleware checks the user has one of the roles (must be used after Auth)
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			zap.L().Named("auth").Info("insufficient permissions",
				zap.String("user_id", user.UserID),
				zap.String("role", user.Role),
				zap.Strings("required", roles),
			)
			utils.RespondError(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// WithUser stores user claims on a context
func WithUser(ctx context.Context, user UserClaims) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) (UserClaims, bool) {
	userClaims, ok := r.Context().Value(UserContextKey).(UserClaims)
	return userClaims, ok
}
