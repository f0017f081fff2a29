package trip

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltroute/voltroute/internal/conditions"
	"github.com/voltroute/voltroute/internal/energy"
	"github.com/voltroute/voltroute/internal/geocoding"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/stations"
	"github.com/voltroute/voltroute/internal/vehicle"
	"github.com/voltroute/voltroute/pkg/polyline"
)

type mockResolver struct {
	locations map[string]geocoding.Location
	err       error
	failFor   string
}

func (m *mockResolver) Resolve(_ context.Context, addressText string) (geocoding.Location, error) {
	if m.err != nil && (m.failFor == "" || m.failFor == addressText) {
		return geocoding.Location{}, m.err
	}
	loc, ok := m.locations[addressText]
	if !ok {
		return geocoding.Location{}, geocoding.ErrNotFound
	}
	return loc, nil
}

func (m *mockResolver) Name() string { return "mock-geocoder" }

type mockRouter struct {
	routes []routing.Route
	err    error

	calls       int
	lastMaxAlts int
}

func (m *mockRouter) GetRoutes(_ context.Context, _, _ routing.Coordinate, maxAlternatives int) ([]routing.Route, error) {
	m.calls++
	m.lastMaxAlts = maxAlternatives
	if m.err != nil {
		return nil, m.err
	}
	return m.routes, nil
}

func (m *mockRouter) Name() string { return "mock-router" }

type stubStationProvider struct {
	raw []stations.RawStation
	err error
}

func (p *stubStationProvider) Query(_ context.Context, _, _, _ float64, _ int) ([]stations.RawStation, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.raw, nil
}

func (p *stubStationProvider) Name() string { return "stub-stations" }

func testGeometry() []polyline.Coordinate {
	return []polyline.Coordinate{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 37.5, Lon: -122.0},
		{Lat: 37.3382, Lon: -121.8863},
	}
}

func testRoute(distanceMeters, durationSeconds float64) routing.Route {
	return routing.Route{
		DistanceMeters:  distanceMeters,
		DurationSeconds: durationSeconds,
		Geometry:        testGeometry(),
		Summary:         "via US-101",
	}
}

func newTestPlanner(t *testing.T, router routing.Provider, repo Repository) *Planner {
	t.Helper()

	resolver := &mockResolver{locations: map[string]geocoding.Location{
		"San Francisco, CA": {Lat: 37.7749, Lon: -122.4194, DisplayName: "San Francisco"},
		"San Jose, CA":      {Lat: 37.3382, Lon: -121.8863, DisplayName: "San Jose"},
	}}

	sampler := conditions.NewService(conditions.ServiceConfig{
		Rand: rand.New(rand.NewSource(7)),
		Now:  func() time.Time { return time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC) },
	})

	stationSvc := stations.NewService(stations.ServiceConfig{
		Provider: &stubStationProvider{raw: []stations.RawStation{
			{ID: "ocm-1", Name: "Downtown Supercharger", Lat: 37.77, Lon: -122.41, PowerKW: 250, Connector: "NACS", Network: "Tesla", Operational: true},
			{ID: "ocm-2", Name: "Airport Fast Charge", Lat: 37.62, Lon: -122.38, PowerKW: 150, Connector: "CCS", Network: "Electrify America", Operational: true},
		}},
	})

	return NewPlanner(PlannerConfig{
		Geocoder:   resolver,
		Router:     router,
		Sampler:    sampler,
		Stations:   stationSvc,
		Catalog:    vehicle.NewCatalog(),
		Repository: repo,
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC) },
	})
}

func validRequest() PlanRequest {
	return PlanRequest{
		Origin:            "San Francisco, CA",
		Destination:       "San Jose, CA",
		VehicleID:         "tesla-model-3-lr",
		StartingChargePct: 80,
	}
}

func TestPlanSingleRouteSynthesizesVariants(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	planner := newTestPlanner(t, router, nil)

	plan, err := planner.Plan(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, plan.Routes, 3)
	assert.Equal(t, "Fastest", plan.Routes[0].Label)
	assert.Equal(t, "Energy Saver", plan.Routes[1].Label)
	assert.Equal(t, "Fewer Stops", plan.Routes[2].Label)

	// Synthesized alternatives share the single geometry.
	for _, rc := range plan.Routes {
		assert.Equal(t, plan.Routes[0].Geometry, rc.Geometry)
		assert.NotEmpty(t, rc.ID)
		assert.GreaterOrEqual(t, rc.BatteryUsagePct, 0)
		assert.LessOrEqual(t, rc.BatteryUsagePct, 100)
	}

	// The efficient variant never consumes more than the baseline.
	assert.LessOrEqual(t, plan.Routes[1].EnergyKwh, plan.Routes[0].EnergyKwh)
	assert.LessOrEqual(t, plan.Routes[1].CostUSD, plan.Routes[0].CostUSD)

	assert.Equal(t, 3, router.lastMaxAlts)
	assert.InDelta(t, 48.0, plan.Routes[0].DistanceMiles, 0.2)
	assert.Equal(t, float64(60), plan.Routes[0].DurationMinutes)
}

func TestPlanMultipleRoutesKeepOwnGeometry(t *testing.T) {
	altGeometry := []polyline.Coordinate{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 37.6, Lon: -122.3},
		{Lat: 37.3382, Lon: -121.8863},
	}
	router := &mockRouter{routes: []routing.Route{
		testRoute(77250, 3600),
		{DistanceMeters: 85000, DurationSeconds: 4200, Geometry: altGeometry, Summary: "via I-280"},
	}}
	planner := newTestPlanner(t, router, nil)

	plan, err := planner.Plan(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, plan.Routes, 2)
	assert.Equal(t, "Fastest", plan.Routes[0].Label)
	assert.Equal(t, "Alternative 2", plan.Routes[1].Label)
	assert.Equal(t, altGeometry, plan.Routes[1].Geometry)
	assert.Greater(t, plan.Routes[1].DistanceMiles, plan.Routes[0].DistanceMiles)
}

func TestPlanUnknownVehicleFailsBeforePipeline(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	planner := newTestPlanner(t, router, nil)

	req := validRequest()
	req.VehicleID = "delorean-dmc-12"

	_, err := planner.Plan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, vehicle.ErrVehicleNotFound)
	assert.Zero(t, router.calls)
}

func TestPlanInvalidChargeFailsBeforePipeline(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	planner := newTestPlanner(t, router, nil)

	req := validRequest()
	req.StartingChargePct = 5

	_, err := planner.Plan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, energy.ErrInvalidCharge)
	assert.Zero(t, router.calls)
}

func TestPlanGeocodeFailureIsFatal(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	planner := newTestPlanner(t, router, nil)

	req := validRequest()
	req.Destination = "Atlantis"

	_, err := planner.Plan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, geocoding.ErrNotFound)
	assert.Contains(t, err.Error(), "Atlantis")
	assert.Zero(t, router.calls)
}

func TestPlanRoutingFailureIsFatal(t *testing.T) {
	router := &mockRouter{err: routing.ErrNoRouteFound}
	planner := newTestPlanner(t, router, nil)

	_, err := planner.Plan(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}

func TestPlanStationLookupDegradesToEmpty(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}

	resolver := &mockResolver{locations: map[string]geocoding.Location{
		"San Francisco, CA": {Lat: 37.7749, Lon: -122.4194},
		"San Jose, CA":      {Lat: 37.3382, Lon: -121.8863},
	}}
	sampler := conditions.NewService(conditions.ServiceConfig{
		Rand: rand.New(rand.NewSource(7)),
	})
	stationSvc := stations.NewService(stations.ServiceConfig{
		Provider: &stubStationProvider{err: errors.New("upstream down")},
	})

	planner := NewPlanner(PlannerConfig{
		Geocoder: resolver,
		Router:   router,
		Sampler:  sampler,
		Stations: stationSvc,
		Catalog:  vehicle.NewCatalog(),
		Logger:   zerolog.Nop(),
	})

	plan, err := planner.Plan(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotNil(t, plan.Stations)
	assert.Empty(t, plan.Stations)
	require.Len(t, plan.Routes, 3)
}

func TestPlanBatteryHealthDefaultsToFull(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	planner := newTestPlanner(t, router, nil)

	req := validRequest()
	req.BatteryHealthPct = 0

	plan, err := planner.Plan(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, plan.Primary())
}

func TestPlanPersistsWhenUserPresent(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	repo := NewMemoryRepository()
	planner := newTestPlanner(t, router, repo)

	req := validRequest()
	req.UserID = "user-42"

	plan, err := planner.Plan(context.Background(), req)
	require.NoError(t, err)

	records, err := repo.ListByUser(context.Background(), "user-42", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, plan.ID, records[0].ID)
	assert.Equal(t, "San Francisco, CA", records[0].Origin)
	assert.Equal(t, "tesla-model-3-lr", records[0].VehicleID)
	assert.NotEmpty(t, records[0].Payload)
}

func TestPlanSkipsPersistenceWithoutUser(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	repo := NewMemoryRepository()
	planner := newTestPlanner(t, router, repo)

	_, err := planner.Plan(context.Background(), validRequest())
	require.NoError(t, err)

	records, err := repo.ListByUser(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

type failingRepo struct{}

func (failingRepo) Save(context.Context, *Record) error { return errors.New("db down") }
func (failingRepo) ListByUser(context.Context, string, int) ([]Record, error) {
	return nil, errors.New("db down")
}

func TestPlanSurvivesPersistenceFailure(t *testing.T) {
	router := &mockRouter{routes: []routing.Route{testRoute(77250, 3600)}}
	planner := newTestPlanner(t, router, failingRepo{})

	req := validRequest()
	req.UserID = "user-42"

	plan, err := planner.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
}

func TestHistoryNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(context.Background(), &Record{
			ID:        string(rune('a' + i)),
			UserID:    "user-42",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Save(context.Background(), &Record{
		ID: "other", UserID: "someone-else", CreatedAt: base,
	}))

	planner := NewPlanner(PlannerConfig{Repository: repo, Logger: zerolog.Nop()})

	records, err := planner.History(context.Background(), "user-42", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
}

func TestHistoryWithoutRepository(t *testing.T) {
	planner := NewPlanner(PlannerConfig{Logger: zerolog.Nop()})

	records, err := planner.History(context.Background(), "user-42", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPipelineTransitions(t *testing.T) {
	pipeline := newPipeline()
	ctx := context.Background()

	assert.Equal(t, StateIdle, pipeline.Current())
	require.NoError(t, pipeline.Event(ctx, "geocode"))
	require.NoError(t, pipeline.Event(ctx, "route"))
	require.NoError(t, pipeline.Event(ctx, "evaluate"))

	// Failure is only reachable from the fatal stages.
	assert.Error(t, pipeline.Event(ctx, "fail"))

	require.NoError(t, pipeline.Event(ctx, "lookup_stations"))
	require.NoError(t, pipeline.Event(ctx, "complete"))
	assert.Equal(t, StateComplete, pipeline.Current())
}

func TestPipelineFailFromRouting(t *testing.T) {
	pipeline := newPipeline()
	ctx := context.Background()

	require.NoError(t, pipeline.Event(ctx, "geocode"))
	require.NoError(t, pipeline.Event(ctx, "route"))
	require.NoError(t, pipeline.Event(ctx, "fail"))
	assert.Equal(t, StateFailed, pipeline.Current())

	// A failed pipeline accepts no further events.
	assert.Error(t, pipeline.Event(ctx, "evaluate"))
}
