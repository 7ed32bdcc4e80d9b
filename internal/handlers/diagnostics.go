package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/pkg/utils"
)

// DiagnosticLog is a log line forwarded by the mobile app, mostly GPS and
// permission problems seen while sharing an approaching location
type DiagnosticLog struct {
	Timestamp string                 `json:"timestamp"`
	Context   string                 `json:"context"`
	Level     string                 `json:"level" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR debug info warning error"`
	Message   string                 `json:"message" validate:"required"`
	Data      map[string]interface{} `json:"data"`
	Platform  string                 `json:"platform"`
}

// ReceiveDiagnosticLog handles POST /api/logs/diagnostic
func ReceiveDiagnosticLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry DiagnosticLog
		if err := decodeJSON(r, &entry); err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		fields := []zap.Field{
			zap.String("platform", entry.Platform),
			zap.String("context", entry.Context),
			zap.String("client_timestamp", entry.Timestamp),
		}
		if user, ok := middleware.GetUserFromContext(r); ok {
			fields = append(fields, zap.String("user_id", user.UserID))
		}
		if len(entry.Data) > 0 {
			fields = append(fields, zap.Any("data", entry.Data))
		}

		zap.L().Named("mobile").Log(diagnosticLevel(entry.Level), entry.Message, fields...)
		utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "logged"})
	}
}

func diagnosticLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "ERROR":
		return zapcore.ErrorLevel
	case "WARNING":
		return zapcore.WarnLevel
	case "DEBUG":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
