package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"shiftmap-backend/internal/config"
	"shiftmap-backend/internal/database"
	"shiftmap-backend/internal/handlers"
	"shiftmap-backend/internal/middleware"
	"shiftmap-backend/internal/models"
	"shiftmap-backend/internal/services"
	"shiftmap-backend/internal/websocket"
)

type routerDeps struct {
	cfg       config.Config
	store     *database.Store
	hub       *websocket.Hub
	liveMap   *services.LiveMapService
	locations *services.LocationService
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(d.hub, d.cfg.JWTSecret, d.cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimitByIP(rate.Limit(1), 10)).
			Post("/auth/login", handlers.Login(d.store, d.cfg.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.cfg.JWTSecret))

			r.Get("/auth/me", handlers.GetCurrentUser())
			r.Post("/fcm-token", handlers.RegisterFCMToken(d.store))
			r.With(middleware.RateLimitByUser(rate.Limit(2), 20)).
				Post("/logs/diagnostic", handlers.ReceiveDiagnosticLog())

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/users", handlers.CreateUser(d.store))
			})

			// Staff share their position every few seconds while travelling
			r.Route("/staff", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleStaff))
				r.Use(middleware.RateLimitByUser(rate.Limit(1), 5))
				r.Post("/shifts/{id}/approaching-location", handlers.ShareApproachingLocation(d.locations))
				r.Delete("/shifts/{id}/approaching-location", handlers.ClearApproachingLocation(d.locations))
			})

			r.Route("/manager", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
				r.Get("/live-map", handlers.GetLiveMap(d.liveMap))
				r.Get("/live-map/stats", handlers.GetLiveMapStats(d.liveMap))
				r.Get("/live-map/notifications", handlers.GetLiveMapNotifications(d.liveMap))
			})
		})
	})

	return r
}
