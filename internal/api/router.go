// Package api provides the HTTP API for VoltRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/api/handler"
	"github.com/voltroute/voltroute/internal/api/middleware"
	"github.com/voltroute/voltroute/internal/stations"
	"github.com/voltroute/voltroute/internal/trip"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	ServiceName    string
	Metrics        *middleware.Metrics
	Planner        *trip.Planner
	StationService *stations.Service
	Catalog        *vehicle.Catalog
	Pool           *pgxpool.Pool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "voltroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pool)
	tripHandler := handler.NewTripHandler(cfg.Planner)
	vehicleHandler := handler.NewVehicleHandler(cfg.Catalog)
	stationHandler := handler.NewStationHandler(cfg.StationService)

	// Rate limit middleware for different endpoint categories
	planningRateLimit := middleware.RateLimitByIP(middleware.PlanningRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Vehicle catalog - standard rate limiting
		r.Route("/vehicles", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", vehicleHandler.ListVehicles)
			r.Get("/{vehicleId}", vehicleHandler.GetVehicle)
		})

		// Station lookup - standard rate limiting
		r.With(standardRateLimit).Get("/stations/nearby", stationHandler.NearbyStations)

		// Trip planning fans out to geocoding, routing, weather, and
		// station providers - strict rate limiting
		r.Route("/trips", func(r chi.Router) {
			r.With(planningRateLimit).Post("/plan", tripHandler.PlanTrip)
			r.With(standardRateLimit).Get("/", tripHandler.TripHistory)
		})
	})

	return r
}
