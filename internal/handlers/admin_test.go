package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/internal/models"
)

type fakeCreator struct {
	created []*models.User
	err     error
}

func (f *fakeCreator) CreateUser(ctx context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, user)
	return nil
}

func TestCreateUser(t *testing.T) {
	admin := middleware.UserClaims{UserID: "U0", Role: models.RoleAdmin, AgencyID: "A1"}

	tests := []struct {
		name   string
		body   string
		err    error
		status int
		errMsg string
	}{
		{"staff", `{"email":"c@shiftmap.dev","password":"longenough","name":"Carer","role":"staff","staff_id":"ST9"}`, nil, http.StatusCreated, ""},
		{"staff without staff id", `{"email":"c@shiftmap.dev","password":"longenough","name":"Carer","role":"staff"}`, nil, http.StatusBadRequest, "staff_id is required"},
		{"bad role", `{"email":"c@shiftmap.dev","password":"longenough","name":"Carer","role":"driver"}`, nil, http.StatusBadRequest, "role must be one of: admin manager staff"},
		{"short password", `{"email":"c@shiftmap.dev","password":"short","name":"Carer","role":"manager"}`, nil, http.StatusBadRequest, "password is invalid"},
		{"duplicate", `{"email":"c@shiftmap.dev","password":"longenough","name":"Carer","role":"manager"}`, database.ErrDuplicate, http.StatusConflict, "User with this email already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCreator{err: tt.err}
			req := asUser(httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(tt.body)), admin)
			rec := httptest.NewRecorder()

			CreateUser(store)(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, decode(t, rec).Error)
				return
			}
			require.Len(t, store.created, 1)
			u := store.created[0]
			assert.Equal(t, "A1", *u.AgencyID, "created in the admin's agency")
			assert.Equal(t, "ST9", *u.StaffID)
			assert.NotEqual(t, "longenough", u.Password)

			var resp models.UserResponse
			require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
			assert.Equal(t, "c@shiftmap.dev", resp.Email)
		})
	}
}

func TestReceiveDiagnosticLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	body := `{"level":"WARNING","message":"location permission denied","platform":"ios","data":{"shift_id":"S1"}}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/logs/diagnostic", strings.NewReader(body)), carer)
	rec := httptest.NewRecorder()

	ReceiveDiagnosticLog()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	entries := logs.FilterMessage("location permission denied").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "U3", entries[0].ContextMap()["user_id"])
}

func TestReceiveDiagnosticLogNeedsMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/logs/diagnostic", strings.NewReader(`{"level":"INFO"}`))
	rec := httptest.NewRecorder()

	ReceiveDiagnosticLog()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message is required", decode(t, rec).Error)
}
