package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/conditions"
	"github.com/voltroute/voltroute/internal/energy"
	"github.com/voltroute/voltroute/internal/geocoding"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/stations"
	"github.com/voltroute/voltroute/internal/vehicle"
	"github.com/voltroute/voltroute/pkg/polyline"
)

// PlannerConfig holds the planner's collaborators and tunables.
type PlannerConfig struct {
	// Geocoder resolves address text (required).
	Geocoder geocoding.Resolver

	// Router fetches route alternatives (required).
	Router routing.Provider

	// Sampler resolves ambient conditions (required).
	Sampler *conditions.Service

	// Stations aggregates charging stations (required).
	Stations *stations.Service

	// Catalog holds vehicle profiles (required).
	Catalog *vehicle.Catalog

	// Repository persists finished plans. Nil disables persistence.
	Repository Repository

	// Logger for planner operations.
	Logger zerolog.Logger

	// MaxAlternatives caps route alternatives (default: 3).
	MaxAlternatives int

	// StationRadiusMiles is the default station search radius
	// (default: 6.2).
	StationRadiusMiles float64

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Planner runs the trip-planning pipeline. It is stateless per invocation
// and never retries: fatal stage errors abort the plan, degraded stages
// fall back silently.
type Planner struct {
	geocoder      geocoding.Resolver
	router        routing.Provider
	sampler       *conditions.Service
	stations      *stations.Service
	catalog       *vehicle.Catalog
	repo          Repository
	logger        zerolog.Logger
	maxAlts       int
	stationRadius float64
	now           func() time.Time
}

// NewPlanner creates a trip planner.
func NewPlanner(cfg PlannerConfig) *Planner {
	maxAlts := cfg.MaxAlternatives
	if maxAlts == 0 {
		maxAlts = 3
	}

	stationRadius := cfg.StationRadiusMiles
	if stationRadius == 0 {
		stationRadius = 6.2
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Planner{
		geocoder:      cfg.Geocoder,
		router:        cfg.Router,
		sampler:       cfg.Sampler,
		stations:      cfg.Stations,
		catalog:       cfg.Catalog,
		repo:          cfg.Repository,
		logger:        cfg.Logger,
		maxAlts:       maxAlts,
		stationRadius: stationRadius,
		now:           now,
	}
}

// newPipeline builds the per-invocation state machine. Failure transitions
// exist only for the fatal stages.
func newPipeline() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: "geocode", Src: []string{StateIdle}, Dst: StateGeocoding},
			{Name: "route", Src: []string{StateGeocoding}, Dst: StateRouting},
			{Name: "evaluate", Src: []string{StateRouting}, Dst: StateEvaluating},
			{Name: "lookup_stations", Src: []string{StateEvaluating}, Dst: StateStationLookup},
			{Name: "complete", Src: []string{StateStationLookup}, Dst: StateComplete},
			{Name: "fail", Src: []string{StateGeocoding, StateRouting}, Dst: StateFailed},
		},
		fsm.Callbacks{},
	)
}

// Plan runs the full pipeline for one request.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	if req.BatteryHealthPct == 0 {
		req.BatteryHealthPct = 100
	}

	// Input validation happens before any stage runs.
	profile, err := p.catalog.Get(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", req.VehicleID, err)
	}
	if err := energy.ValidateTripParams(req.StartingChargePct, req.BatteryHealthPct); err != nil {
		return nil, err
	}

	pipeline := newPipeline()

	// Geocoding: origin and destination resolve concurrently, either
	// failure is fatal.
	_ = pipeline.Event(ctx, "geocode")
	originLoc, destLoc, err := p.geocode(ctx, req.Origin, req.Destination)
	if err != nil {
		_ = pipeline.Event(ctx, "fail")
		return nil, err
	}

	// Routing: zero alternatives is fatal.
	_ = pipeline.Event(ctx, "route")
	routes, err := p.router.GetRoutes(ctx,
		routing.Coordinate{Lat: originLoc.Lat, Lon: originLoc.Lon},
		routing.Coordinate{Lat: destLoc.Lat, Lon: destLoc.Lon},
		p.maxAlts,
	)
	if err != nil {
		_ = pipeline.Event(ctx, "fail")
		return nil, fmt.Errorf("routing %q to %q: %w", req.Origin, req.Destination, err)
	}

	_ = pipeline.Event(ctx, "evaluate")
	candidates := p.evaluate(ctx, profile, req, routes)

	_ = pipeline.Event(ctx, "lookup_stations")
	radius := req.StationRadiusMiles
	if radius <= 0 {
		radius = p.stationRadius
	}
	var stationList []stations.Station
	if len(candidates) > 0 {
		stationList = p.stations.FindAlongRoute(ctx, candidates[0].Geometry, radius, req.Amenities)
	} else {
		stationList = []stations.Station{}
	}

	_ = pipeline.Event(ctx, "complete")

	plan := &Plan{
		ID:                "trip_" + uuid.New().String()[:22],
		Origin:            req.Origin,
		Destination:       req.Destination,
		OriginCoords:      originLoc,
		DestinationCoords: destLoc,
		Vehicle:           profile,
		StartingChargePct: req.StartingChargePct,
		Routes:            candidates,
		Stations:          stationList,
		GeneratedAt:       p.now(),
	}

	p.persist(ctx, req, plan)

	p.logger.Info().
		Str("trip_id", plan.ID).
		Str("pipeline_state", pipeline.Current()).
		Int("routes", len(plan.Routes)).
		Int("stations", len(plan.Stations)).
		Msg("trip planned")

	return plan, nil
}

// geocode resolves both endpoints concurrently.
func (p *Planner) geocode(ctx context.Context, origin, destination string) (geocoding.Location, geocoding.Location, error) {
	var (
		wg                 sync.WaitGroup
		originLoc, destLoc geocoding.Location
		originErr, destErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		originLoc, originErr = p.geocoder.Resolve(ctx, origin)
	}()
	go func() {
		defer wg.Done()
		destLoc, destErr = p.geocoder.Resolve(ctx, destination)
	}()
	wg.Wait()

	if originErr != nil {
		return geocoding.Location{}, geocoding.Location{}, fmt.Errorf("geocoding origin %q: %w", origin, originErr)
	}
	if destErr != nil {
		return geocoding.Location{}, geocoding.Location{}, fmt.Errorf("geocoding destination %q: %w", destination, destErr)
	}
	return originLoc, destLoc, nil
}

// evaluate turns raw route geometries into candidates. Real alternatives
// are estimated from their own geometry; when the router yields a single
// route, the remaining alternatives are synthesized with named variant
// adjustments.
func (p *Planner) evaluate(ctx context.Context, profile vehicle.Profile, req PlanRequest, routes []routing.Route) []RouteCandidate {
	if len(routes) > 1 {
		candidates := make([]RouteCandidate, len(routes))

		var wg sync.WaitGroup
		for i, rt := range routes {
			wg.Add(1)
			go func(i int, rt routing.Route) {
				defer wg.Done()

				label := "Fastest"
				if i > 0 {
					label = fmt.Sprintf("Alternative %d", i+1)
				}
				candidates[i] = p.evaluateRoute(ctx, profile, req, rt, label, energy.VariantFastest)
			}(i, rt)
		}
		wg.Wait()

		return candidates
	}

	// Single geometry: synthesize differentiated alternatives.
	rt := routes[0]
	variants := []energy.Variant{energy.VariantFastest, energy.VariantEfficient, energy.VariantFewerStops}

	candidates := make([]RouteCandidate, len(variants))
	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(i int, v energy.Variant) {
			defer wg.Done()
			candidates[i] = p.evaluateRoute(ctx, profile, req, rt, v.Label, v)
		}(i, v)
	}
	wg.Wait()

	return candidates
}

// evaluateRoute samples conditions at the route's start, midpoint, and
// end, runs the energy model, and applies the variant adjustment.
func (p *Planner) evaluateRoute(ctx context.Context, profile vehicle.Profile, req PlanRequest, rt routing.Route, label string, variant energy.Variant) RouteCandidate {
	var samples [3]conditions.Sample
	if len(rt.Geometry) > 0 {
		start := rt.Geometry[0]
		mid := polyline.Midpoint(rt.Geometry)
		end := rt.Geometry[len(rt.Geometry)-1]

		// The three points are spatially independent, so they sample as
		// a concurrent group.
		group := p.sampler.SampleGroup(ctx, [][2]float64{
			{start.Lat, start.Lon},
			{mid.Lat, mid.Lon},
			{end.Lat, end.Lon},
		})
		copy(samples[:], group)
	}

	distanceMiles := polyline.MetersToMiles(rt.DistanceMeters)

	usage, err := energy.Estimate(profile, energy.Request{
		DistanceMiles:     distanceMiles,
		StartingChargePct: req.StartingChargePct,
		BatteryHealthPct:  req.BatteryHealthPct,
	}, samples[:])
	if err != nil {
		// Parameters were validated up front, so only a provider
		// returning garbage distance lands here. Degrade to a
		// zero-usage candidate rather than dropping the route.
		p.logger.Error().Err(err).
			Float64("distance_miles", distanceMiles).
			Msg("energy estimate failed for route")
		usage = energy.Usage{}
	}

	usage = variant.Apply(usage, req.StartingChargePct)

	return RouteCandidate{
		ID:              "rt_" + uuid.New().String()[:8],
		Label:           label,
		Summary:         rt.Summary,
		DistanceMiles:   math.Round(distanceMiles*10) / 10,
		DurationMinutes: math.Round(rt.DurationSeconds / 60),
		BatteryUsagePct: usage.BatteryUsagePct,
		ChargingStops:   usage.ChargingStops,
		KwhPerMile:      usage.KwhPerMile,
		EnergyKwh:       usage.EnergyKwh,
		CostUSD:         usage.CostUSD,
		Geometry:        rt.Geometry,
		Conditions:      samples,
	}
}

// persist saves the finished plan when a caller identity is present.
// Persistence failure degrades with a warning; the plan is still returned.
func (p *Planner) persist(ctx context.Context, req PlanRequest, plan *Plan) {
	if p.repo == nil || req.UserID == "" {
		return
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		p.logger.Error().Err(err).Str("trip_id", plan.ID).Msg("failed to marshal trip payload")
		return
	}

	rec := &Record{
		ID:                plan.ID,
		UserID:            req.UserID,
		Origin:            plan.Origin,
		Destination:       plan.Destination,
		OriginLat:         plan.OriginCoords.Lat,
		OriginLon:         plan.OriginCoords.Lon,
		DestLat:           plan.DestinationCoords.Lat,
		DestLon:           plan.DestinationCoords.Lon,
		StartingChargePct: plan.StartingChargePct,
		VehicleID:         plan.Vehicle.ID,
		Payload:           payload,
		CreatedAt:         plan.GeneratedAt,
	}

	if err := p.repo.Save(ctx, rec); err != nil {
		p.logger.Warn().Err(err).Str("trip_id", plan.ID).Msg("failed to persist trip record")
	}
}

// History returns a user's persisted trips, newest first.
func (p *Planner) History(ctx context.Context, userID string, limit int) ([]Record, error) {
	if p.repo == nil {
		return []Record{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return p.repo.ListByUser(ctx, userID, limit)
}
