// Package main provides the entrypoint for the VoltRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/api"
	"github.com/voltroute/voltroute/internal/api/middleware"
	"github.com/voltroute/voltroute/internal/conditions"
	"github.com/voltroute/voltroute/internal/conditions/openweathermap"
	"github.com/voltroute/voltroute/internal/database"
	"github.com/voltroute/voltroute/internal/geocoding/nominatim"
	"github.com/voltroute/voltroute/internal/routing/openrouteservice"
	"github.com/voltroute/voltroute/internal/stations"
	"github.com/voltroute/voltroute/internal/stations/openchargemap"
	"github.com/voltroute/voltroute/internal/telemetry"
	"github.com/voltroute/voltroute/internal/trip"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "voltroute-api"

	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting VoltRoute API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)

	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Database is optional; without it trips are simply not persisted
	var pool *pgxpool.Pool
	if os.Getenv("DB_ENABLED") == "true" {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		log.Warn().Msg("database disabled - trip history will not be persisted")
	}

	// Condition sampler: synthetic-only without an OpenWeatherMap key
	var conditionProvider conditions.Provider
	if key := os.Getenv("OPENWEATHERMAP_API_KEY"); key != "" {
		conditionProvider = openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey: key,
			Logger: log,
		})
		log.Info().Msg("OpenWeatherMap provider initialized")
	} else {
		log.Warn().Msg("OPENWEATHERMAP_API_KEY not set - using synthetic conditions")
	}

	sampler := conditions.NewService(conditions.ServiceConfig{
		Provider: conditionProvider,
		Logger:   log,
		CacheTTL: durationFromEnv("CONDITIONS_CACHE_TTL", 15*time.Minute),
	})

	// Station aggregator: demo stations without an Open Charge Map key
	var stationProvider stations.Provider
	if key := os.Getenv("OPENCHARGEMAP_API_KEY"); key != "" {
		stationProvider = openchargemap.NewClient(openchargemap.ClientConfig{
			APIKey: key,
			Logger: log,
		})
		log.Info().Msg("Open Charge Map provider initialized")
	} else {
		stationProvider = stations.NewDemoProvider()
		log.Warn().Msg("OPENCHARGEMAP_API_KEY not set - using demo stations")
	}

	stationService := stations.NewService(stations.ServiceConfig{
		Provider:           stationProvider,
		Logger:             log,
		CacheTTL:           durationFromEnv("STATIONS_CACHE_TTL", 5*time.Minute),
		DefaultRadiusMiles: floatFromEnv("STATION_RADIUS_MILES", 6.2),
		DefaultMaxResults:  intFromEnv("STATION_MAX_RESULTS", 50),
		RouteWorkers:       intFromEnv("STATION_ROUTE_WORKERS", 3),
	})

	// Routing requires an OpenRouteService key
	orsKey := os.Getenv("ORS_API_KEY")
	if orsKey == "" {
		log.Fatal().Msg("ORS_API_KEY is required")
	}
	router := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey: orsKey,
		Logger: log,
	})

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		Logger: log,
	})

	catalog := vehicle.NewCatalog()

	var repo trip.Repository
	if pool != nil {
		repo = trip.NewPostgresRepository(pool)
	}

	planner := trip.NewPlanner(trip.PlannerConfig{
		Geocoder:           geocoder,
		Router:             router,
		Sampler:            sampler,
		Stations:           stationService,
		Catalog:            catalog,
		Repository:         repo,
		Logger:             log,
		StationRadiusMiles: floatFromEnv("STATION_RADIUS_MILES", 6.2),
	})
	log.Info().Msg("trip planner initialized")

	// Create router with configuration
	mux := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		Planner:        planner,
		StationService: stationService,
		Catalog:        catalog,
		Pool:           pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}

func floatFromEnv(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
