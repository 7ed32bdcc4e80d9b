package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shiftmap-backend/internal/config"
	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/services"
	"shiftmap-backend/internal/websocket"
)

func main() {
	cfg, envFileLoaded, cfgErr := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfgErr != nil {
		logger.Fatal("invalid configuration", zap.Error(cfgErr))
	}
	if !envFileLoaded {
		logger.Info(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}
	if err := database.SeedUsers(db); err != nil {
		logger.Fatal("user seeding failed", zap.Error(err))
	}
	if !cfg.IsProduction() {
		if err := database.SeedDemo(db, time.Now()); err != nil {
			logger.Fatal("demo seeding failed", zap.Error(err))
		}
	}

	store := database.NewStore(db)
	hub := websocket.NewHub(logger)
	liveMap := services.NewLiveMapService(store, logger)
	locations := services.NewLocationService(store, hub, logger)

	hub.SetHooks(websocket.Hooks{
		Snapshot: func(ctx context.Context, agencyID string) (interface{}, error) {
			return liveMap.Snapshot(ctx, agencyID, "")
		},
		Locations: locations,
	})
	go hub.Run(ctx)

	// Push alerts are optional
	var alerts services.Alerter
	if fcm := newFCMService(ctx, cfg, logger); fcm != nil {
		alerts = services.NewGeofenceAlerter(store, fcm, logger)
	}
	poller := services.NewPoller(liveMap, hub, store, alerts, cfg.RefreshInterval, logger)
	go poller.Run(ctx)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: newRouter(routerDeps{
			cfg:       cfg,
			store:     store,
			hub:       hub,
			liveMap:   liveMap,
			locations: locations,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	} else {
		logger.Info("server exited gracefully")
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newFCMService prefers base64 credentials (for hosts without a file system)
// and falls back to a credentials file. Returns nil when push is unavailable.
func newFCMService(ctx context.Context, cfg config.Config, logger *zap.Logger) *services.FCMService {
	var (
		fcm *services.FCMService
		err error
	)
	switch {
	case cfg.FirebaseCredentialsBase64 != "":
		fcm, err = services.NewFCMServiceFromBase64(ctx, cfg.FirebaseCredentialsBase64, logger)
	case cfg.FirebaseCredentialsFile != "":
		fcm, err = services.NewFCMService(ctx, cfg.FirebaseCredentialsFile, logger)
	default:
		logger.Info("no Firebase credentials configured, push alerts disabled")
		return nil
	}
	if err != nil {
		logger.Warn("failed to initialize FCM, push alerts disabled", zap.Error(err))
		return nil
	}
	logger.Info("Firebase Cloud Messaging initialized")
	return fcm
}
