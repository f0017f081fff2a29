package stations

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/pkg/polyline"
)

// ServiceConfig holds configuration for the station aggregator.
type ServiceConfig struct {
	// Provider is the charging-station data provider (required).
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a spatial query result stays fresh
	// (default: 5 minutes).
	CacheTTL time.Duration

	// DefaultRadiusMiles is used when a query omits the radius
	// (default: 6.2, roughly 10 km).
	DefaultRadiusMiles float64

	// DefaultMaxResults caps results when a query omits the limit
	// (default: 50).
	DefaultMaxResults int

	// RouteSamplePoints is the maximum number of query points taken
	// along a route (default: 5).
	RouteSamplePoints int

	// RouteWorkers bounds the concurrent FindNear fan-out during
	// route aggregation (default: 3).
	RouteWorkers int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service resolves charging stations with per-query caching and cross-query
// deduplication. Lookup failures degrade to empty results, never errors.
type Service struct {
	provider          Provider
	logger            zerolog.Logger
	cacheTTL          time.Duration
	defaultRadius     float64
	defaultMaxResults int
	routeSamplePoints int
	routeWorkers      int
	now               func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedLookup
}

type cachedLookup struct {
	stations  []Station
	expiresAt time.Time
}

// NewService creates a new station aggregator.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	defaultRadius := cfg.DefaultRadiusMiles
	if defaultRadius == 0 {
		defaultRadius = 6.2
	}

	defaultMaxResults := cfg.DefaultMaxResults
	if defaultMaxResults == 0 {
		defaultMaxResults = 50
	}

	routeSamplePoints := cfg.RouteSamplePoints
	if routeSamplePoints == 0 {
		routeSamplePoints = 5
	}

	routeWorkers := cfg.RouteWorkers
	if routeWorkers == 0 {
		routeWorkers = 3
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:          cfg.Provider,
		logger:            cfg.Logger,
		cacheTTL:          cacheTTL,
		defaultRadius:     defaultRadius,
		defaultMaxResults: defaultMaxResults,
		routeSamplePoints: routeSamplePoints,
		routeWorkers:      routeWorkers,
		now:               now,
		cache:             make(map[string]cachedLookup),
	}
}

// FindNear returns operational stations around a point, filtered by
// amenities (OR semantics) and sorted by ascending distance. Results are
// cached by the exact (lat, lon, radius) triple; any provider failure
// degrades to an empty result for that call and is not cached.
func (s *Service) FindNear(ctx context.Context, q NearbyQuery) []Station {
	if q.RadiusMiles <= 0 {
		q.RadiusMiles = s.defaultRadius
	}
	if q.MaxResults <= 0 {
		q.MaxResults = s.defaultMaxResults
	}

	key := s.cacheKey(q)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.stations
	}
	s.mu.RUnlock()

	return s.lookup(ctx, q, key)
}

// FindAlongRoute queries stations around evenly-strided sample points of
// the route polyline and merges the results, deduplicating by provider
// identifier. A failing sample point contributes nothing; the aggregate is
// whatever the remaining points collected.
func (s *Service) FindAlongRoute(ctx context.Context, route []polyline.Coordinate, radiusMiles float64, amenities []string) []Station {
	points := polyline.SamplePoints(route, s.routeSamplePoints)
	if len(points) == 0 {
		return []Station{}
	}

	results := make([][]Station, len(points))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.routeWorkers)
	for i, p := range points {
		wg.Add(1)
		go func(i int, p polyline.Coordinate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.FindNear(ctx, NearbyQuery{
				Lat:         p.Lat,
				Lon:         p.Lon,
				RadiusMiles: radiusMiles,
				Amenities:   amenities,
			})
		}(i, p)
	}
	wg.Wait()

	// Merge with dedup; a station visible from two sample points keeps
	// its smallest observed distance.
	seen := make(map[string]Station)
	for _, batch := range results {
		for _, st := range batch {
			if prev, ok := seen[st.ProviderID]; !ok || st.DistanceMiles < prev.DistanceMiles {
				seen[st.ProviderID] = st
			}
		}
	}

	merged := make([]Station, 0, len(seen))
	for _, st := range seen {
		merged = append(merged, st)
	}
	sortByDistance(merged)

	s.logger.Debug().
		Int("sample_points", len(points)).
		Int("stations", len(merged)).
		Msg("aggregated stations along route")

	return merged
}

// lookup fetches from the provider, enriches, filters, sorts, and caches.
func (s *Service) lookup(ctx context.Context, q NearbyQuery, key string) []Station {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock
	if cached, ok := s.cache[key]; ok {
		if s.now().Before(cached.expiresAt) {
			return cached.stations
		}
		delete(s.cache, key)
	}

	raw, err := s.provider.Query(ctx, q.Lat, q.Lon, q.RadiusMiles, q.MaxResults)
	if err != nil {
		s.logger.Warn().Err(err).
			Float64("lat", q.Lat).
			Float64("lon", q.Lon).
			Float64("radius_miles", q.RadiusMiles).
			Str("provider", s.provider.Name()).
			Msg("station lookup failed, returning empty result")
		return []Station{}
	}

	origin := polyline.Coordinate{Lat: q.Lat, Lon: q.Lon}
	stations := make([]Station, 0, len(raw))
	for _, r := range raw {
		if !r.Operational {
			continue
		}

		st := enrich(r)
		if !st.HasAnyAmenity(q.Amenities) {
			continue
		}

		st.DistanceMiles = polyline.DistanceMiles(origin, polyline.Coordinate{Lat: st.Lat, Lon: st.Lon})
		stations = append(stations, st)
	}

	sortByDistance(stations)
	if len(stations) > q.MaxResults {
		stations = stations[:q.MaxResults]
	}

	s.cache[key] = cachedLookup{
		stations:  stations,
		expiresAt: s.now().Add(s.cacheTTL),
	}

	return stations
}

// cacheKey uses the query coordinates and radius exactly as given.
func (s *Service) cacheKey(q NearbyQuery) string {
	return fmt.Sprintf("%v:%v:%v", q.Lat, q.Lon, q.RadiusMiles)
}

func sortByDistance(stations []Station) {
	sort.Slice(stations, func(i, j int) bool {
		return stations[i].DistanceMiles < stations[j].DistanceMiles
	})
}

// InvalidateCache clears all cached lookups.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedLookup)
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	fresh := 0
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
		Provider:     s.provider.Name(),
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
	Provider     string
}
